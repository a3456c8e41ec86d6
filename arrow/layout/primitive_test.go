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
	"github.com/columnar/carrow/arrow/layout"
	"github.com/columnar/carrow/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitive(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a, err := layout.NewPrimitive(mem, []int32{1, 2, 3, 4}, []bool{true, false, true, true})
	require.NoError(t, err)
	defer a.Release()

	assert.Equal(t, arrow.INT32, a.DataType().ID)
	assert.Equal(t, "i", a.Proxy().Format())
	assert.Equal(t, []int32{1, 2, 3, 4}, a.Values())
	assert.Equal(t, layout.Some[int32](3), a.At(2))
	assert.False(t, a.At(1).Valid)
	assert.Equal(t, 1, a.NullN())
	assert.Equal(t, "[1 (null) 3 4]", a.String())

	require.NoError(t, a.Set(1, layout.Some[int32](20)))
	require.NoError(t, a.Set(3, layout.None[int32]()))
	assert.Equal(t, "[1 20 3 (null)]", a.String())
	assert.EqualValues(t, 1, a.Proxy().Array().NullCount)
	assert.Zero(t, a.Value(3))

	out, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[1, 20, 3, null]`, string(out))

	_, err = a.Get(4)
	assert.ErrorIs(t, err, arrow.ErrIndex)
}

func TestPrimitiveMaterializesBitmapOnFirstNull(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a, err := layout.NewPrimitive(mem, []float64{1.5, 2.5}, nil)
	require.NoError(t, err)
	defer a.Release()

	assert.Empty(t, a.Proxy().Buffer(0))
	assert.Nil(t, a.Proxy().Buffers()[0])
	require.NoError(t, a.Set(0, layout.None[float64]()))
	assert.NotEmpty(t, a.Proxy().Buffer(0))
	assert.Equal(t, 1, a.NullN())
	assert.Equal(t, "[(null) 2.5]", a.String())
}

func TestPrimitiveTemporalAndHalfFloat(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	_, err := layout.NewPrimitive(mem, []arrow.Timestamp{1}, nil)
	assert.ErrorIs(t, err, arrow.ErrType)

	dt := arrow.DataType{ID: arrow.TIMESTAMP, Unit: arrow.Microsecond, TimeZone: "UTC"}
	ts, err := layout.NewPrimitiveOf(mem, dt, []arrow.Timestamp{10, 20}, nil)
	require.NoError(t, err)
	defer ts.Release()
	assert.Equal(t, "tsu:UTC", ts.Proxy().Format())
	assert.Equal(t, arrow.Timestamp(20), ts.Value(1))

	_, err = layout.NewPrimitiveOf(mem, dt, []int32{1}, nil)
	assert.ErrorIs(t, err, arrow.ErrType)

	h, err := layout.NewPrimitive(mem, []arrow.Float16{arrow.NewFloat16(1.5), arrow.NewFloat16(-2)}, nil)
	require.NoError(t, err)
	defer h.Release()
	assert.Equal(t, "e", h.Proxy().Format())
	out, err := h.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, -2]`, string(out))

	d, err := layout.NewPrimitive(mem, []arrow.Date32{19000}, nil)
	require.NoError(t, err)
	defer d.Release()
	assert.Equal(t, "tdD", d.Proxy().Format())
}

func TestBoolean(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a, err := layout.NewBoolean(mem, []bool{true, false, true}, []bool{true, true, false})
	require.NoError(t, err)
	defer a.Release()

	assert.Equal(t, layout.Some(true), a.At(0))
	assert.Equal(t, layout.Some(false), a.At(1))
	assert.False(t, a.At(2).Valid)
	assert.Equal(t, "[true false (null)]", a.String())

	require.NoError(t, a.Set(2, layout.Some(true)))
	require.NoError(t, a.Set(0, layout.Some(false)))
	assert.Zero(t, a.NullN())
	assert.Equal(t, "[false false true]", a.String())

	var got []bool
	for _, v := range a.All() {
		got = append(got, v.ValueOr(false))
	}
	assert.Equal(t, []bool{false, false, true}, got)

	_, err = layout.NewBoolean(mem, []bool{true}, []bool{true, false})
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}

func TestNull(t *testing.T) {
	a := layout.NewNull(3)
	defer a.Release()

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 3, a.NullN())
	assert.True(t, a.IsNull(1))
	assert.False(t, a.At(0).Valid)
	assert.Equal(t, "[(null) (null) (null)]", a.String())
	assert.Equal(t, "n", a.Proxy().Format())
	assert.Zero(t, a.Proxy().NumBuffers())

	out, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[null, null, null]`, string(out))

	n := 0
	for _, v := range a.All() {
		assert.False(t, v.Valid)
		n++
	}
	assert.Equal(t, 3, n)
}

func TestNullable(t *testing.T) {
	v := layout.Some("x")
	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, "x", got)
	assert.True(t, v.HasValue())
	assert.Equal(t, "d", layout.None[string]().ValueOr("d"))
}
