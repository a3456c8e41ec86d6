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
	"math/big"
	"testing"

	"github.com/cockroachdb/apd/v3"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/layout"
	"github.com/columnar/carrow/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalType(id arrow.Type, prec, scale int32, width int) arrow.DataType {
	return arrow.DataType{ID: id, Precision: prec, Scale: scale, ByteWidth: width}
}

func mustDecimal(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestDecimal(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	dt := decimalType(arrow.DECIMAL128, 10, 2, 16)
	a, err := layout.NewDecimal(mem, dt, []*apd.Decimal{apd.New(12345, -2), apd.New(-5, 0), nil}, nil)
	require.NoError(t, err)
	defer a.Release()

	assert.Equal(t, "d:10,2", a.Proxy().Format())
	assert.EqualValues(t, 10, a.Precision())
	assert.EqualValues(t, 2, a.Scale())
	assert.Equal(t, big.NewInt(12345), a.Unscaled(0))
	assert.Equal(t, big.NewInt(-500), a.Unscaled(1))
	assert.Equal(t, "[123.45 -5.00 (null)]", a.String())
	assert.Equal(t, 1, a.NullN())

	out, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["123.45", "-5.00", null]`, string(out))

	require.NoError(t, a.Set(2, layout.Some(apd.New(1, 3))))
	assert.Equal(t, "1000.00", a.ValueStr(2))
	assert.Zero(t, a.NullN())
	assert.Zero(t, a.Value(2).Cmp(apd.New(1000, 0)))
}

func TestDecimalRejectsUnrepresentable(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a, err := layout.NewDecimal(mem, decimalType(arrow.DECIMAL128, 10, 2, 16), []*apd.Decimal{apd.New(12345, -2)}, nil)
	require.NoError(t, err)
	defer a.Release()

	tests := []struct {
		name string
		val  *apd.Decimal
		want error
	}{
		{"rounds", apd.New(1234, -3), arrow.ErrInvalid},
		{"too many digits", apd.New(1, 8), arrow.ErrInvalid},
		{"nan", mustDecimal(t, "NaN"), arrow.ErrInvalid},
		{"infinite", mustDecimal(t, "-Infinity"), arrow.ErrInvalid},
		{"nil", nil, arrow.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, a.Set(0, layout.Some(tt.val)), tt.want)
			assert.Equal(t, "123.45", a.ValueStr(0), "a rejected value leaves the slot untouched")
		})
	}

	// precision 12 cannot be stored in 32 bits
	_, err = layout.NewDecimal(mem, decimalType(arrow.DECIMAL32, 12, 0, 4), []*apd.Decimal{apd.New(3_000_000_000, 0)}, nil)
	assert.ErrorIs(t, err, arrow.ErrOverflow)
	_, err = layout.NewDecimal(mem, arrow.DataType{ID: arrow.INT32}, nil, nil)
	assert.ErrorIs(t, err, arrow.ErrType)
	_, err = layout.NewDecimal(mem, decimalType(arrow.DECIMAL64, 5, 0, 8), []*apd.Decimal{nil}, []bool{true})
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}

func TestDecimalWidths(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tests := []struct {
		dt   arrow.DataType
		vals []string
	}{
		{decimalType(arrow.DECIMAL32, 9, 3, 4), []string{"-1.000", "999999.999", "-999999.999"}},
		{decimalType(arrow.DECIMAL64, 18, 0, 8), []string{"-1", "123456789012345678"}},
		{decimalType(arrow.DECIMAL256, 40, 5, 32), []string{"123456789012345678901234567890.12345", "-0.00001"}},
	}
	for _, tt := range tests {
		t.Run(tt.dt.String(), func(t *testing.T) {
			vals := make([]*apd.Decimal, len(tt.vals))
			for i, s := range tt.vals {
				vals[i] = mustDecimal(t, s)
			}
			a, err := layout.NewDecimal(mem, tt.dt, vals, nil)
			require.NoError(t, err)
			defer a.Release()

			assert.Len(t, a.Proxy().Buffer(1), len(vals)*tt.dt.ByteWidth)
			for i, s := range tt.vals {
				assert.Equal(t, s, a.ValueStr(i))
			}

			c, err := layout.Clone(a)
			require.NoError(t, err)
			defer c.Release()
			assert.Equal(t, a.String(), c.String())
			assert.Equal(t, tt.dt.Format(), c.Proxy().Format())
		})
	}
}
