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

// Package table groups equal-length layouts into named record batches.
package table

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/layout"
	"github.com/columnar/carrow/internal/json"
)

// RecordBatch is an ordered set of named columns of the same length. It
// owns its columns.
type RecordBatch struct {
	names []string
	cols  []layout.Array
	rows  int64
}

// NewRecordBatch takes ownership of cols. Every column must have the same
// length and names must be unique.
func NewRecordBatch(names []string, cols []layout.Array) (*RecordBatch, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%w: %d names for %d columns", arrow.ErrInvalid, len(names), len(cols))
	}
	rec := &RecordBatch{names: slices.Clone(names), cols: slices.Clone(cols)}
	for i, c := range cols {
		if slices.Index(names, names[i]) != i {
			return nil, fmt.Errorf("%w: duplicate column name %q", arrow.ErrInvalid, names[i])
		}
		if i == 0 {
			rec.rows = int64(c.Len())
			continue
		}
		if int64(c.Len()) != rec.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d",
				arrow.ErrInvalid, names[i], c.Len(), rec.rows)
		}
	}
	return rec, nil
}

func (r *RecordBatch) NumRows() int64            { return r.rows }
func (r *RecordBatch) NumCols() int64            { return int64(len(r.cols)) }
func (r *RecordBatch) Column(i int) layout.Array { return r.cols[i] }
func (r *RecordBatch) ColumnName(i int) string   { return r.names[i] }
func (r *RecordBatch) Columns() []layout.Array   { return r.cols }
func (r *RecordBatch) ColumnNames() []string     { return r.names }

// ColumnByName returns the column called name, or nil.
func (r *RecordBatch) ColumnByName(name string) layout.Array {
	if i := slices.Index(r.names, name); i >= 0 {
		return r.cols[i]
	}
	return nil
}

// Release releases every column.
func (r *RecordBatch) Release() {
	for _, c := range r.cols {
		c.Release()
	}
	r.cols = nil
}

// MarshalJSON encodes the batch as an array of row objects with keys in
// column order.
func (r *RecordBatch) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for row := range int(r.rows) {
		if row > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for i, c := range r.cols {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(r.names[i])
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(c.GetOneForMarshal(row))
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", r.names[i], row, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
