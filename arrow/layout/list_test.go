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

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/layout"
	"github.com/columnar/carrow/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values, err := layout.NewPrimitive(mem, []int32{1, 2, 3, 4, 5}, nil)
	require.NoError(t, err)
	a, err := layout.NewList(mem, []int32{0, 2, 2, 5, 5}, []bool{true, true, true, false}, values)
	require.NoError(t, err)
	defer a.Release()

	assert.Equal(t, "+l", a.Proxy().Format())
	assert.Equal(t, 1, a.Proxy().NumChildren())
	assert.True(t, values.Proxy().Array().IsReleased(), "values moved under the list")
	assert.Equal(t, 4, a.Len())
	assert.Equal(t, []int32{0, 2, 2, 5, 5}, a.Offsets())
	assert.Equal(t, "[[1 2] [] [3 4 5] (null)]", a.String())

	s, e := a.ValueOffsets(2)
	assert.EqualValues(t, 3, s)
	assert.EqualValues(t, 5, e)
	third := a.Value(2).(*layout.Primitive[int32])
	assert.Equal(t, []int32{3, 4, 5}, third.Values())
	assert.Equal(t, 0, a.Value(1).Len())

	out, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[[1, 2], [], [3, 4, 5], null]`, string(out))

	n := 0
	for i, v := range a.All() {
		assert.Equal(t, i != 3, v.Valid)
		n++
	}
	assert.Equal(t, 4, n)
}

func TestListSliceAndClone(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values, err := layout.NewString(mem, []string{"a", "b", "c", "d"}, []bool{true, true, false, true})
	require.NoError(t, err)
	a, err := layout.NewLargeList(mem, []int64{0, 1, 3, 4}, nil, values)
	require.NoError(t, err)
	defer a.Release()
	assert.Equal(t, "+L", a.Proxy().Format())

	s, err := layout.NewSlice(a, 1, 3)
	require.NoError(t, err)
	view := s.(*layout.List[int64])
	assert.Equal(t, "[[b (null)] [d]]", view.String())
	assert.Equal(t, []int64{1, 3, 4}, view.Offsets())

	c, err := layout.Clone(view)
	require.NoError(t, err)
	defer c.Release()
	assert.Equal(t, view.String(), c.String())
	assert.True(t, c.Proxy().IsMutable())
	assert.NotSame(t, a.ListValues().Proxy().Array(), c.(layout.ListArray).ListValues().Proxy().Array())
}

func TestListOfDictionary(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values, err := layout.DictionaryEncode[int8](mem, []string{"x", "y", "x"}, nil)
	require.NoError(t, err)
	a, err := layout.NewList(mem, []int32{0, 1, 3}, nil, values)
	require.NoError(t, err)
	defer a.Release()

	_, ok := a.ListValues().(layout.DictionaryArray)
	assert.True(t, ok)
	assert.Equal(t, "[[x] [y x]]", a.String())
}

func TestListRejectsBadOffsets(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values, err := layout.NewPrimitive(mem, []int8{1, 2}, nil)
	require.NoError(t, err)
	defer values.Release()

	for _, offs := range [][]int32{{}, {0, 3}, {-1, 1}, {0, 2, 1}} {
		_, err := layout.NewList(mem, offs, nil, values)
		assert.ErrorIsf(t, err, arrow.ErrInvalid, "offsets %v", offs)
		assert.True(t, values.Proxy().OwnsArray(), "values stay with the caller on error")
	}
	_, err = layout.NewList(mem, []int32{0, 1, 2}, []bool{true}, values)
	assert.ErrorIs(t, err, arrow.ErrInvalid)

	view, err := layout.NewSlice(values, 0, 1)
	require.NoError(t, err)
	_, err = layout.NewList(mem, []int32{0, 1}, nil, view)
	assert.ErrorIs(t, err, arrow.ErrReadOnly)

	// offsets pointing past the child, built below the layout
	child, err := layout.NewPrimitive(mem, []int8{1}, nil)
	require.NoError(t, err)
	carr, csch, err := child.Proxy().Extract()
	require.NoError(t, err)
	arr := cdata.NewArrowArray(mem, 1, 0, 0, []*memory.Buffer{
		nil, memory.CopyBuffer(mem, arrow.GetBytes([]int32{0, 4})),
	}, []*cdata.ArrowArray{carr}, nil)
	sch := cdata.NewArrowSchema("+l", "", arrow.Metadata{}, 0, []*cdata.ArrowSchema{csch}, nil)
	p := cdata.NewProxy(arr, sch)
	defer p.Release()
	_, err = layout.MakeArray(p)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}

func TestFixedSizeList(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values, err := layout.NewPrimitive(mem, []float32{1, 2, 3, 4, 5, 6}, nil)
	require.NoError(t, err)
	a, err := layout.NewFixedSizeList(mem, 2, []bool{true, false, true}, values)
	require.NoError(t, err)
	defer a.Release()

	assert.Equal(t, "+w:2", a.Proxy().Format())
	assert.Equal(t, 2, a.ListSize())
	assert.Equal(t, "[[1 2] (null) [5 6]]", a.String())

	s, err := layout.NewSlice(a, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "[[5 6]]", s.String())

	odd, err := layout.NewPrimitive(mem, []float32{1, 2, 3}, nil)
	require.NoError(t, err)
	defer odd.Release()
	_, err = layout.NewFixedSizeList(mem, 2, nil, odd)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}
