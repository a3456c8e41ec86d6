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

func TestDictionaryLookup(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values, err := layout.NewString(mem, []string{"a", "b", "c"}, nil)
	require.NoError(t, err)
	d, err := layout.NewDictionary(mem, []int32{0, 0, 1, 2}, nil, values)
	require.NoError(t, err)
	defer d.Release()

	var got []any
	for _, v := range d.All() {
		require.True(t, v.Valid)
		got = append(got, v.Value)
	}
	assert.Equal(t, []any{"a", "a", "b", "c"}, got)
	assert.Equal(t, arrow.DICTIONARY, d.DataType().ID)
	assert.Equal(t, arrow.INT32, d.IndexType().ID)
	assert.Equal(t, arrow.STRING, d.ValueType().ID)
	assert.Equal(t, 2, d.GetValueIndex(3))
	assert.Equal(t, layout.Some[int32](1), d.Index(2))
	assert.Equal(t, "c", d.ValueStr(3))
}

func TestDictionaryValidity(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values, err := layout.NewString(mem, []string{"a", "b", "c"}, []bool{true, true, false})
	require.NoError(t, err)
	d, err := layout.NewDictionary(mem, []uint8{0, 1, 2, 1, 0}, []bool{true, false, true, true, true}, values)
	require.NoError(t, err)
	defer d.Release()

	want := []bool{true, false, false, true, true}
	for i, v := range d.All() {
		assert.Equalf(t, want[i], v.Valid, "element %d", i)
		assert.Equalf(t, want[i], d.IsValid(i), "element %d", i)
		assert.Equal(t, d.At(i).Valid, v.Valid)
	}
	assert.Equal(t, 2, d.NullN())
	assert.Nil(t, d.At(1).Value, "a null key yields the empty value")

	for i := range d.Len() {
		if k := d.Index(i); k.Valid {
			assert.Equal(t, d.Values().(*layout.Binary[int32]).At(int(k.Value)).Valid, d.At(i).Valid)
		}
	}

	out, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["a", null, null, "b", "a"]`, string(out))
}

func TestDictionaryEncode(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	d, err := layout.DictionaryEncode[int8](mem, []string{"x", "y", "x", "", "y"}, []bool{true, true, true, false, true})
	require.NoError(t, err)
	defer d.Release()

	dict := d.Values().(*layout.Binary[int32])
	assert.Equal(t, []string{"x", "y"}, strs(dict))
	assert.Equal(t, []int8{0, 1, 0, 0, 1}, d.Keys().Values())
	assert.Equal(t, "c", d.Proxy().Format())
	assert.Equal(t, "u", d.Proxy().Dictionary().Format())
	assert.Equal(t, 1, d.NullN())

	_, err = layout.DictionaryEncode[int8](mem, []string{"x"}, []bool{true, false})
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}

func TestDictionaryEncodeKeyOverflow(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	vals := make([]string, 300)
	for i := range vals {
		vals[i] = string(rune('A' + i))
	}
	_, err := layout.DictionaryEncode[int8](mem, vals, nil)
	assert.ErrorIs(t, err, arrow.ErrOverflow)

	d, err := layout.DictionaryEncode[uint16](mem, vals, nil)
	require.NoError(t, err)
	assert.Equal(t, 300, d.Values().Len())
	d.Release()
}

func TestDictionaryRejectsOutOfRangeKeys(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values, err := layout.NewString(mem, []string{"a"}, nil)
	require.NoError(t, err)
	_, err = layout.NewDictionary(mem, []int16{0, 1}, nil, values)
	assert.ErrorIs(t, err, arrow.ErrIndex)
	assert.True(t, values.Proxy().OwnsArray(), "values stay with the caller on error")

	// keys [0, 5] over a one-value dictionary, built below the layout
	dictArr, dictSch, err := values.Proxy().Extract()
	require.NoError(t, err)
	arr := cdata.NewArrowArray(mem, 2, 0, 0, []*memory.Buffer{
		nil, memory.CopyBuffer(mem, arrow.GetBytes([]int32{0, 5})),
	}, nil, dictArr)
	sch := cdata.NewArrowSchema("i", "", arrow.Metadata{}, 0, nil, dictSch)
	p := cdata.NewProxy(arr, sch)
	defer p.Release()

	_, err = layout.MakeArray(p)
	assert.ErrorIs(t, err, arrow.ErrIndex)
}

func TestDictionaryValidityLengthMismatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	values, err := layout.NewString(mem, []string{"a", "b"}, nil)
	require.NoError(t, err)
	defer values.Release()

	for _, valid := range [][]bool{{true}, {}, {true, true, true, false}} {
		assert.NotPanics(t, func() {
			_, err = layout.NewDictionary(mem, []int32{0, 1, 1}, valid, values)
		})
		assert.ErrorIsf(t, err, arrow.ErrInvalid, "%d validity entries", len(valid))
		assert.True(t, values.Proxy().OwnsArray())
	}
}

func TestDictionaryRebind(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	d, err := layout.DictionaryEncode[int32](mem, []string{"a", "b"}, nil)
	require.NoError(t, err)
	other, err := layout.DictionaryEncode[int32](mem, []string{"q", "r", "q"}, nil)
	require.NoError(t, err)
	defer other.Release()

	orig := d.Proxy()
	view, err := layout.NewSlice(other, 1, 3)
	require.NoError(t, err)

	require.NoError(t, d.Rebind(view.Proxy()))
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, "r", d.ValueStr(0))
	assert.Equal(t, "q", d.ValueStr(1))
	assert.Same(t, view.Proxy(), d.Proxy())

	require.NoError(t, d.Rebind(orig))
	assert.Equal(t, "a", d.ValueStr(0))
	d.Release()
}
