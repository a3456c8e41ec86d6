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

package layout_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/layout"
	"github.com/columnar/carrow/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSizeBinary(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a, err := layout.NewFixedSizeBinary(mem, 3, [][]byte{[]byte("abc"), []byte("def"), nil}, []bool{true, true, false})
	require.NoError(t, err)
	defer a.Release()

	assert.Equal(t, "w:3", a.Proxy().Format())
	assert.Equal(t, 3, a.ByteWidth())
	assert.Equal(t, "def", string(a.Value(1)))
	assert.Equal(t, "abcdef\x00\x00\x00", string(a.ValueData()))
	assert.Equal(t, "[YWJj ZGVm (null)]", a.String())
	assert.Equal(t, 1, a.NullN())

	require.NoError(t, a.Set(2, layout.Some([]byte("xyz"))))
	require.NoError(t, a.Set(1, layout.None[[]byte]()))
	assert.Equal(t, []byte{0, 0, 0}, a.Value(1))
	assert.Equal(t, "xyz", string(a.At(2).Value))
	assert.EqualValues(t, 1, a.Proxy().Array().NullCount)

	assert.ErrorIs(t, a.Set(0, layout.Some([]byte("toolong"))), arrow.ErrInvalid)
	assert.Equal(t, "abc", string(a.Value(0)))

	out, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["YWJj", null, "eHl6"]`, string(out))

	_, err = a.Get(3)
	assert.ErrorIs(t, err, arrow.ErrIndex)
}

func TestFixedSizeBinarySlice(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a, err := layout.NewFixedSizeBinary(mem, 2, [][]byte{{1, 2}, {3, 4}, {5, 6}}, nil)
	require.NoError(t, err)
	defer a.Release()

	s, err := layout.NewSlice(a, 1, 3)
	require.NoError(t, err)
	view := s.(*layout.FixedSizeBinary)
	assert.Equal(t, []byte{3, 4}, view.Value(0))
	assert.Equal(t, []byte{3, 4, 5, 6}, view.ValueData())
	assert.ErrorIs(t, view.Set(0, layout.Some([]byte{9, 9})), arrow.ErrReadOnly)

	var got [][]byte
	for _, v := range view.All() {
		got = append(got, v.Value)
	}
	assert.Equal(t, [][]byte{{3, 4}, {5, 6}}, got)
}

func TestFixedSizeBinaryRejectsBadInput(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	_, err := layout.NewFixedSizeBinary(mem, 2, [][]byte{{1}}, nil)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
	_, err = layout.NewFixedSizeBinary(mem, 0, nil, nil)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
	_, err = layout.NewFixedSizeBinary(mem, 1, [][]byte{{1}, {2}}, []bool{true})
	assert.ErrorIs(t, err, arrow.ErrInvalid)

	// three elements of width 4 over an 8-byte buffer
	arr := cdata.NewArrowArray(mem, 3, 0, 0, []*memory.Buffer{nil, memory.CopyBuffer(mem, make([]byte, 8))}, nil, nil)
	p := cdata.NewProxy(arr, cdata.NewArrowSchema("w:4", "", arrow.Metadata{}, 0, nil, nil))
	defer p.Release()
	_, err = layout.MakeArray(p)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}

func TestUUID(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ids, err := layout.ParseUUIDs([]string{
		"f81d4fae-7dec-11d0-a765-00a0c91e6bf6",
		"00000000-0000-0000-0000-000000000000",
	})
	require.NoError(t, err)
	a, err := layout.NewUUID(mem, ids, []bool{true, false})
	require.NoError(t, err)
	defer a.Release()

	name, ok := a.Proxy().Metadata().GetValue(arrow.ExtensionNameKey)
	require.True(t, ok)
	assert.Equal(t, layout.UUIDExtensionName, name)
	assert.Equal(t, "w:16", a.Proxy().Format())
	assert.Equal(t, 16, a.Storage().ByteWidth())
	assert.Equal(t, ids[0], a.Value(0))
	assert.Equal(t, "f81d4fae-7dec-11d0-a765-00a0c91e6bf6", a.ValueStr(0))
	assert.Equal(t, "(null)", a.ValueStr(1))

	out, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["f81d4fae-7dec-11d0-a765-00a0c91e6bf6", null]`, string(out))

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.NoError(t, a.Set(1, layout.Some(id)))
	assert.Equal(t, layout.Some(id), a.At(1))
	assert.Zero(t, a.NullN())

	c, err := layout.Clone(a)
	require.NoError(t, err)
	defer c.Release()
	cu, ok := c.(*layout.UUID)
	require.True(t, ok, "the extension survives a clone")
	assert.Equal(t, id, cu.Value(1))

	_, err = layout.ParseUUIDs([]string{"not-a-uuid"})
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}
