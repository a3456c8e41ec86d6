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
	"fmt"

	"github.com/columnar/carrow/arrow/layout"
	"github.com/columnar/carrow/arrow/memory"
	"github.com/columnar/carrow/arrow/table"
)

func Example_tableCreation() {
	mem := memory.DefaultAllocator

	// Build three columns
	ints, _ := layout.NewPrimitive(mem, []int64{1, 2, 3, 4, 5}, nil)
	strs, _ := layout.NewString(mem, []string{"a", "b", "c", "d", "e"}, nil)
	floats, _ := layout.NewPrimitive(mem, []float64{1, 0, 3, 0, 5}, []bool{true, false, true, false, true})

	// Assemble a record batch, which takes ownership of the columns
	rec, err := table.NewRecordBatch(
		[]string{"intField", "stringField", "floatField"},
		[]layout.Array{ints, strs, floats})
	if err != nil {
		panic(err)
	}
	defer rec.Release()

	// Calculate sum of floatField, skipping nulls
	var sum float64
	for _, v := range rec.ColumnByName("floatField").(*layout.Primitive[float64]).All() {
		if v.Valid {
			sum += v.Value
		}
	}
	fmt.Printf("Sum of floatField: %v\n", sum)

	fmt.Println("\nTable contents:")
	fmt.Printf("Number of rows: %d\n", rec.NumRows())
	fmt.Printf("Number of columns: %d\n", rec.NumCols())
	fmt.Println("\nColumn names:")
	for _, name := range rec.ColumnNames() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println(rec.Column(2))

	// Output:
	// Sum of floatField: 9
	//
	// Table contents:
	// Number of rows: 5
	// Number of columns: 3
	//
	// Column names:
	//   intField
	//   stringField
	//   floatField
	// [1 (null) 3 (null) 5]
}
