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

package table_test

import (
	"testing"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/layout"
	"github.com/columnar/carrow/arrow/memory"
	"github.com/columnar/carrow/arrow/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ids, err := layout.NewPrimitive(mem, []int64{1, 2, 3}, nil)
	require.NoError(t, err)
	names, err := layout.NewString(mem, []string{"a", "b", "c"}, []bool{true, false, true})
	require.NoError(t, err)
	tags, err := layout.DictionaryEncode[int8](mem, []string{"x", "x", "y"}, nil)
	require.NoError(t, err)

	rec, err := table.NewRecordBatch([]string{"id", "name", "tag"}, []layout.Array{ids, names, tags})
	require.NoError(t, err)
	defer rec.Release()

	assert.EqualValues(t, 3, rec.NumRows())
	assert.EqualValues(t, 3, rec.NumCols())
	assert.Equal(t, "name", rec.ColumnName(1))
	assert.Same(t, names, rec.ColumnByName("name"))
	assert.Nil(t, rec.ColumnByName("missing"))
	assert.Equal(t, []string{"id", "name", "tag"}, rec.ColumnNames())

	out, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`[{"id":1,"name":"a","tag":"x"},{"id":2,"name":null,"tag":"x"},{"id":3,"name":"c","tag":"y"}]`,
		string(out))
}

func TestRecordBatchValidation(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	a, err := layout.NewPrimitive(mem, []int32{1, 2}, nil)
	require.NoError(t, err)
	defer a.Release()
	b, err := layout.NewPrimitive(mem, []int32{1}, nil)
	require.NoError(t, err)
	defer b.Release()

	_, err = table.NewRecordBatch([]string{"a", "b"}, []layout.Array{a, b})
	assert.ErrorIs(t, err, arrow.ErrInvalid)

	_, err = table.NewRecordBatch([]string{"a"}, []layout.Array{a, b})
	assert.ErrorIs(t, err, arrow.ErrInvalid)

	_, err = table.NewRecordBatch([]string{"a", "a"}, []layout.Array{a, a})
	assert.ErrorIs(t, err, arrow.ErrInvalid)

	empty, err := table.NewRecordBatch(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, empty.NumRows())
	out, err := empty.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}
