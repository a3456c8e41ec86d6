// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bitmap_test

import (
	"math/rand"
	"testing"

	"github.com/columnar/carrow/arrow/bitmap"
	"github.com/columnar/carrow/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bitsOf[P any, PT interface {
	*P
	bitmap.Policy
}](b *bitmap.Bitmap[P, PT]) []bool {
	out := make([]bool, 0, b.Len())
	for _, v := range b.All() {
		out = append(out, v)
	}
	return out
}

func TestTrackingInitialize(t *testing.T) {
	var tr bitmap.Tracking
	tr.Initialize([]byte{0b1011_0101, 0b0000_0011}, 10, 0)
	n, ok := tr.NullCount()
	require.True(t, ok)
	assert.Equal(t, 10-7, n)

	tr.Initialize(nil, 10, 0)
	n, _ = tr.NullCount()
	assert.Zero(t, n)

	tr.Update(true, false)
	tr.Update(true, false)
	tr.Update(false, true)
	tr.Update(true, true)
	n, _ = tr.NullCount()
	assert.Equal(t, 1, n)

	other := bitmap.Tracking{}
	other.SetNullCount(5)
	tr.Swap(&other)
	n, _ = tr.NullCount()
	assert.Equal(t, 5, n)
	n, _ = other.NullCount()
	assert.Equal(t, 1, n)

	tr.Clear()
	n, _ = tr.NullCount()
	assert.Zero(t, n)
}

func TestNonTracking(t *testing.T) {
	var nt bitmap.NonTracking
	nt.Initialize([]byte{0}, 8, 0)
	nt.Update(true, false)
	_, ok := nt.NullCount()
	assert.False(t, ok)

	v := bitmap.NewView([]byte{0b0000_1111}, 2, 6)
	assert.Equal(t, 6, v.Len())
	assert.Equal(t, 4, v.NullCount())
	assert.Equal(t, []bool{true, true, false, false, false, false}, bitsOf(v))
}

func TestTrackedMatchesRecompute(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	buf := memory.NewResizableBuffer(mem)
	defer buf.Release()
	buf.Resize(8)
	r := rand.New(rand.NewSource(42))
	r.Read(buf.Bytes())

	b := bitmap.NewTracked(mem, buf, 3, 50)
	for i := 0; i < 200; i++ {
		b.Set(r.Intn(b.Len()), r.Intn(2) == 0)
	}
	got := b.NullCount()

	var fresh bitmap.Tracking
	fresh.Recompute(b.Bytes(), b.Len(), b.Offset())
	want, _ := fresh.NullCount()
	assert.Equal(t, want, got)

	view := bitmap.NewView(b.Bytes(), b.Offset(), b.Len())
	assert.Equal(t, want, view.NullCount())
}

func TestMaterializeOnFirstNull(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b := bitmap.NewTracked(mem, nil, 0, 10)
	assert.Nil(t, b.Buffer())
	assert.True(t, b.IsSet(9))
	b.Set(3, true)
	assert.Nil(t, b.Buffer())

	b.Set(3, false)
	require.NotNil(t, b.Buffer())
	assert.Equal(t, 2, b.Buffer().Len())
	assert.Equal(t, 1, b.NullCount())
	assert.False(t, b.IsSet(3))
	assert.True(t, b.IsSet(9))

	b.Buffer().Release()
}

func TestInsertEraseRoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b := bitmap.NewTracked(mem, nil, 0, 0)
	pattern := []bool{true, false, true, true, false, false, true, true, true, false, true}
	for _, v := range pattern {
		b.PushBack(v)
	}
	require.Equal(t, pattern, bitsOf(b))
	assert.Equal(t, 4, b.NullCount())
	before := append([]byte(nil), b.Bytes()...)

	b.Insert(4, false, 9)
	assert.Equal(t, 20, b.Len())
	assert.Equal(t, 13, b.NullCount())
	for i := 4; i < 13; i++ {
		assert.False(t, b.IsSet(i))
	}
	assert.Equal(t, pattern[4:], bitsOf(b)[13:])

	b.Erase(4, 9)
	assert.Equal(t, pattern, bitsOf(b))
	assert.Equal(t, before, b.Bytes())
	assert.Equal(t, 4, b.NullCount())

	b.PopBack()
	assert.Equal(t, pattern[:len(pattern)-1], bitsOf(b))
	assert.Equal(t, 3, b.NullCount())

	b.Buffer().Release()
}

func TestResize(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	b := bitmap.NewTracked(mem, nil, 0, 4)
	b.Resize(8, true)
	assert.Nil(t, b.Buffer())
	assert.Zero(t, b.NullCount())

	b.Resize(12, false)
	require.NotNil(t, b.Buffer())
	assert.Equal(t, 4, b.NullCount())
	assert.True(t, b.IsSet(7))
	assert.False(t, b.IsSet(8))

	b.Resize(9, true)
	assert.Equal(t, 1, b.NullCount())
	assert.Equal(t, 2, b.Buffer().Len())

	b.Clear()
	assert.Zero(t, b.Len())
	assert.Zero(t, b.NullCount())

	b.Buffer().Release()
}

func TestIterator(t *testing.T) {
	v := bitmap.NewView([]byte{0b1010_1010, 0b0000_0001}, 1, 8)
	it := v.Iterator()
	var got []bool
	for it.Next() {
		got = append(got, it.Value())
	}
	assert.Equal(t, []bool{true, false, true, false, true, false, true, true}, got)
	assert.False(t, it.Next())

	it = v.Iterator()
	it.Next()
	it.Advance(6)
	assert.Equal(t, 6, it.Index())
	assert.True(t, it.Value())
	it.Advance(10)
	assert.Equal(t, it.Len(), it.Index())
}

func TestSwap(t *testing.T) {
	a := bitmap.NewTracked(nil, nil, 0, 3)
	b := bitmap.NewTracked(nil, nil, 0, 5)
	b.Set(0, false)
	a.Swap(b)
	assert.Equal(t, 5, a.Len())
	assert.Equal(t, 1, a.NullCount())
	assert.Equal(t, 3, b.Len())
	assert.Zero(t, b.NullCount())
}
