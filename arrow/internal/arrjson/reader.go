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

package arrjson

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/internal/debug"
	"github.com/columnar/carrow/arrow/layout"
	"github.com/columnar/carrow/arrow/memory"
	"github.com/columnar/carrow/arrow/table"
	"github.com/columnar/carrow/internal/json"
)

type Option func(*config)

type config struct {
	mem         memory.Allocator
	parallelism int
}

// WithAllocator sets the allocator for the arrays the reader builds.
func WithAllocator(mem memory.Allocator) Option {
	return func(c *config) { c.mem = mem }
}

// WithParallelism bounds the number of batches ReadAll builds at once.
// Values below 1 mean no limit.
func WithParallelism(n int) Option {
	return func(c *config) { c.parallelism = n }
}

// Reader decodes a whole integration JSON document up front and builds
// record batches from it on demand.
type Reader struct {
	mem   memory.Allocator
	par   int
	file  File
	dicts map[int64]Record
	md    arrow.Metadata
	cur   int
}

// NewReader decodes the document in r.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	cfg := config{mem: memory.DefaultAllocator}
	for _, o := range opts {
		o(&cfg)
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("arrjson: could not decode file: %w", err)
	}

	for i := range f.Schema.Fields {
		if err := f.Schema.Fields[i].decode(); err != nil {
			return nil, err
		}
	}
	dicts := make(map[int64]Record, len(f.Dictionaries))
	for _, d := range f.Dictionaries {
		if len(d.Data.Columns) != 1 {
			return nil, fmt.Errorf("%w: dictionary %d has %d columns", arrow.ErrInvalid, d.ID, len(d.Data.Columns))
		}
		dicts[d.ID] = d.Data
	}
	debug.Logf("arrjson: %d fields, %d batches, %d dictionaries", len(f.Schema.Fields), len(f.Batches), len(dicts))

	return &Reader{
		mem:   cfg.mem,
		par:   cfg.parallelism,
		file:  f,
		dicts: dicts,
		md:    metadataFromJSON(f.Schema.Metadata),
	}, nil
}

func (r *Reader) Fields() []Field          { return r.file.Schema.Fields }
func (r *Reader) Metadata() arrow.Metadata { return r.md }
func (r *Reader) NumBatches() int          { return len(r.file.Batches) }

// Read returns the next batch, or io.EOF after the last one. The caller
// releases the batch.
func (r *Reader) Read() (*table.RecordBatch, error) {
	if r.cur >= len(r.file.Batches) {
		return nil, io.EOF
	}
	rec, err := r.ReadAt(r.cur)
	if err != nil {
		return nil, err
	}
	r.cur++
	return rec, nil
}

// ReadAll builds every batch concurrently. On error, batches already
// built are released and nothing is returned.
func (r *Reader) ReadAll(ctx context.Context) ([]*table.RecordBatch, error) {
	out := make([]*table.RecordBatch, len(r.file.Batches))
	g, ctx := errgroup.WithContext(ctx)
	if r.par > 0 {
		g.SetLimit(r.par)
	}
	for i := range out {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := r.ReadAt(i)
			if err != nil {
				return err
			}
			out[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, rec := range out {
			if rec != nil {
				rec.Release()
			}
		}
		return nil, err
	}
	return out, nil
}

// ReadAt builds batch i.
func (r *Reader) ReadAt(i int) (*table.RecordBatch, error) {
	if i < 0 || i >= len(r.file.Batches) {
		return nil, fmt.Errorf("%w: batch %d of %d", arrow.ErrIndex, i, len(r.file.Batches))
	}
	raw := r.file.Batches[i]
	fields := r.file.Schema.Fields
	if len(raw.Columns) != len(fields) {
		return nil, fmt.Errorf("%w: batch %d has %d columns for %d fields", arrow.ErrInvalid, i, len(raw.Columns), len(fields))
	}

	names := make([]string, len(fields))
	cols := make([]layout.Array, 0, len(fields))
	release := func() {
		for _, c := range cols {
			c.Release()
		}
	}
	for j := range fields {
		col, err := r.column(&fields[j], raw.Columns[j])
		if err != nil {
			release()
			return nil, fmt.Errorf("arrjson: batch %d column %q: %w", i, fields[j].Name, err)
		}
		names[j] = fields[j].Name
		cols = append(cols, col)
	}

	rec, err := table.NewRecordBatch(names, cols)
	if err != nil {
		release()
		return nil, err
	}
	return rec, nil
}

// hasData reports whether columns of f carry a DATA block. Nested and
// null columns do not.
func hasData(f *Field) bool {
	if f.Dictionary != nil {
		return true
	}
	switch f.arrowType.ID {
	case arrow.NULL, arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		return false
	}
	return true
}

func (r *Reader) column(f *Field, arr Array) (layout.Array, error) {
	if arr.Valids != nil && len(arr.Valids) != arr.Count {
		return nil, fmt.Errorf("%w: %d VALIDITY entries for count %d", arrow.ErrInvalid, len(arr.Valids), arr.Count)
	}
	if hasData(f) && len(arr.Data) != arr.Count {
		return nil, fmt.Errorf("%w: %d DATA entries for count %d", arrow.ErrInvalid, len(arr.Data), arr.Count)
	}

	var (
		col layout.Array
		err error
	)
	if f.Dictionary != nil {
		col, err = r.dictionary(f, arr)
	} else {
		col, err = r.arrayFromJSON(f, arr)
	}
	if err != nil {
		return nil, err
	}

	p := col.Proxy()
	err = p.SetName(f.Name)
	if err == nil && len(f.Metadata) > 0 {
		err = p.SetMetadata(metadataFromJSON(f.Metadata))
	}
	if err == nil && !f.Nullable {
		err = p.SetFlags(p.Flags().Without(arrow.FlagNullable))
	}
	if err == nil && f.Dictionary != nil && f.Dictionary.Ordered {
		err = p.SetFlags(p.Flags().With(arrow.FlagDictionaryOrdered))
	}
	if err != nil {
		col.Release()
		return nil, err
	}
	return col, nil
}

func (r *Reader) dictionary(f *Field, arr Array) (layout.Array, error) {
	d, ok := r.dicts[f.Dictionary.ID]
	if !ok {
		return nil, fmt.Errorf("%w: no dictionary with id %d", arrow.ErrInvalid, f.Dictionary.ID)
	}
	values, err := r.arrayFromJSON(f, d.Columns[0])
	if err != nil {
		return nil, err
	}

	kt, err := intType(f.Dictionary.IndexType.Signed, f.Dictionary.IndexType.BitWidth)
	if err != nil {
		values.Release()
		return nil, err
	}
	var out layout.Array
	switch kt.ID {
	case arrow.INT8:
		out, err = dictFromJSON[int8](r.mem, arr, values)
	case arrow.UINT8:
		out, err = dictFromJSON[uint8](r.mem, arr, values)
	case arrow.INT16:
		out, err = dictFromJSON[int16](r.mem, arr, values)
	case arrow.UINT16:
		out, err = dictFromJSON[uint16](r.mem, arr, values)
	case arrow.INT32:
		out, err = dictFromJSON[int32](r.mem, arr, values)
	case arrow.UINT32:
		out, err = dictFromJSON[uint32](r.mem, arr, values)
	case arrow.INT64:
		out, err = dictFromJSON[int64](r.mem, arr, values)
	default:
		out, err = dictFromJSON[uint64](r.mem, arr, values)
	}
	if err != nil {
		values.Release()
		return nil, err
	}
	return out, nil
}

func dictFromJSON[K constraints.Integer](mem memory.Allocator, arr Array, values layout.Array) (layout.Array, error) {
	keys, err := intsFromJSON[K](arr.Data)
	if err != nil {
		return nil, err
	}
	d, err := layout.NewDictionary(mem, keys, validsFromJSON(arr.Valids), values)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Reader) arrayFromJSON(f *Field, arr Array) (layout.Array, error) {
	mem, dt := r.mem, f.arrowType
	valid := validsFromJSON(arr.Valids)
	switch dt.ID {
	case arrow.NULL:
		return layout.NewNull(arr.Count), nil
	case arrow.BOOL:
		vals, err := boolsFromJSON(arr.Data)
		if err != nil {
			return nil, err
		}
		return wrap(layout.NewBoolean(mem, vals, valid))
	case arrow.INT8:
		return primitive[int8](mem, dt, arr, valid, intsFromJSON[int8])
	case arrow.UINT8:
		return primitive[uint8](mem, dt, arr, valid, intsFromJSON[uint8])
	case arrow.INT16:
		return primitive[int16](mem, dt, arr, valid, intsFromJSON[int16])
	case arrow.UINT16:
		return primitive[uint16](mem, dt, arr, valid, intsFromJSON[uint16])
	case arrow.INT32:
		return primitive[int32](mem, dt, arr, valid, intsFromJSON[int32])
	case arrow.UINT32:
		return primitive[uint32](mem, dt, arr, valid, intsFromJSON[uint32])
	case arrow.INT64:
		return primitive[int64](mem, dt, arr, valid, intsFromJSON[int64])
	case arrow.UINT64:
		return primitive[uint64](mem, dt, arr, valid, intsFromJSON[uint64])
	case arrow.FLOAT16:
		return primitive[arrow.Float16](mem, dt, arr, valid, f16FromJSON)
	case arrow.FLOAT32:
		return primitive[float32](mem, dt, arr, valid, floatsFromJSON[float32])
	case arrow.FLOAT64:
		return primitive[float64](mem, dt, arr, valid, floatsFromJSON[float64])
	case arrow.DATE32:
		return primitive[arrow.Date32](mem, dt, arr, valid, intsFromJSON[arrow.Date32])
	case arrow.DATE64:
		return primitive[arrow.Date64](mem, dt, arr, valid, intsFromJSON[arrow.Date64])
	case arrow.TIME32:
		return primitive[arrow.Time32](mem, dt, arr, valid, intsFromJSON[arrow.Time32])
	case arrow.TIME64:
		return primitive[arrow.Time64](mem, dt, arr, valid, intsFromJSON[arrow.Time64])
	case arrow.TIMESTAMP:
		return primitive[arrow.Timestamp](mem, dt, arr, valid, intsFromJSON[arrow.Timestamp])
	case arrow.DURATION:
		return primitive[arrow.Duration](mem, dt, arr, valid, intsFromJSON[arrow.Duration])
	case arrow.STRING, arrow.LARGE_STRING:
		vals, err := strsFromJSON(arr.Data)
		if err != nil {
			return nil, err
		}
		if dt.ID == arrow.STRING {
			return wrap(layout.NewString(mem, vals, valid))
		}
		return wrap(layout.NewLargeString(mem, vals, valid))
	case arrow.BINARY, arrow.LARGE_BINARY:
		vals, err := bytesFromJSON(arr.Data)
		if err != nil {
			return nil, err
		}
		if dt.ID == arrow.BINARY {
			return wrap(layout.NewBinary(mem, vals, valid))
		}
		return wrap(layout.NewLargeBinary(mem, vals, valid))
	case arrow.INTERVAL_MONTHS:
		return primitive[arrow.MonthInterval](mem, dt, arr, valid, intsFromJSON[arrow.MonthInterval])
	case arrow.INTERVAL_DAY_TIME:
		vals, err := structsFromJSON[arrow.DayTimeInterval](arr.Data)
		if err != nil {
			return nil, err
		}
		return wrap(layout.NewInterval(mem, vals, valid))
	case arrow.INTERVAL_MONTH_DAY_NANO:
		vals, err := structsFromJSON[arrow.MonthDayNanoInterval](arr.Data)
		if err != nil {
			return nil, err
		}
		return wrap(layout.NewInterval(mem, vals, valid))
	case arrow.FIXED_SIZE_BINARY:
		vals, err := bytesFromJSON(arr.Data)
		if err != nil {
			return nil, err
		}
		if f.isUUID() {
			return uuidFromJSON(mem, vals, valid)
		}
		return wrap(layout.NewFixedSizeBinary(mem, dt.ByteWidth, vals, valid))
	case arrow.DECIMAL32, arrow.DECIMAL64, arrow.DECIMAL128, arrow.DECIMAL256:
		vals, err := decimalsFromJSON(arr.Data, dt.Scale)
		if err != nil {
			return nil, err
		}
		return wrap(layout.NewDecimal(mem, dt, vals, valid))
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		return r.listFromJSON(f, arr, valid)
	}
	return nil, fmt.Errorf("%w: arrjson values of type %s", arrow.ErrNotImplemented, dt)
}

func (r *Reader) listFromJSON(f *Field, arr Array, valid []bool) (layout.Array, error) {
	if len(f.Children) != 1 || len(arr.Children) != 1 {
		return nil, fmt.Errorf("%w: %s column needs one child, got %d fields and %d arrays",
			arrow.ErrInvalid, f.arrowType, len(f.Children), len(arr.Children))
	}
	values, err := r.column(&f.Children[0], arr.Children[0])
	if err != nil {
		return nil, fmt.Errorf("child %q: %w", f.Children[0].Name, err)
	}

	var out layout.Array
	switch f.arrowType.ID {
	case arrow.LIST:
		var offs []int32
		if offs, err = offsetsFromJSON[int32](arr.Offset); err == nil {
			out, err = wrap(layout.NewList(r.mem, offs, valid, values))
		}
	case arrow.LARGE_LIST:
		var offs []int64
		if offs, err = offsetsFromJSON[int64](arr.Offset); err == nil {
			out, err = wrap(layout.NewLargeList(r.mem, offs, valid, values))
		}
	default:
		out, err = wrap(layout.NewFixedSizeList(r.mem, int(f.arrowType.ListSize), valid, values))
	}
	if err != nil {
		values.Release()
		return nil, err
	}
	return out, nil
}

func uuidFromJSON(mem memory.Allocator, vals [][]byte, valid []bool) (layout.Array, error) {
	ids := make([]uuid.UUID, len(vals))
	for i, v := range vals {
		if valid != nil && i < len(valid) && !valid[i] {
			continue
		}
		id, err := uuid.FromBytes(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", arrow.ErrInvalid, err)
		}
		ids[i] = id
	}
	return wrap(layout.NewUUID(mem, ids, valid))
}

func wrap[L layout.Array](l L, err error) (layout.Array, error) {
	if err != nil {
		return nil, err
	}
	return l, nil
}

func primitive[T arrow.FixedWidthType](mem memory.Allocator, dt arrow.DataType, arr Array, valid []bool, conv func([]any) ([]T, error)) (layout.Array, error) {
	vals, err := conv(arr.Data)
	if err != nil {
		return nil, err
	}
	return wrap(layout.NewPrimitiveOf(mem, dt, vals, valid))
}

// validsFromJSON returns nil for an absent VALIDITY block, meaning no
// nulls.
func validsFromJSON(vs []int) []bool {
	if vs == nil {
		return nil
	}
	o := make([]bool, len(vs))
	for i, v := range vs {
		o[i] = v > 0
	}
	return o
}

func boolsFromJSON(vs []any) ([]bool, error) {
	o := make([]bool, len(vs))
	for i, v := range vs {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %v (%T) is not a bool", arrow.ErrInvalid, v, v)
		}
		o[i] = b
	}
	return o, nil
}

// intsFromJSON accepts numbers and, for 64-bit values, decimal strings.
func intsFromJSON[T constraints.Integer](vs []any) ([]T, error) {
	o := make([]T, len(vs))
	for i, v := range vs {
		var s string
		switch v := v.(type) {
		case json.Number:
			s = v.String()
		case string:
			s = v
		default:
			return nil, fmt.Errorf("%w: %v (%T) is not an integer", arrow.ErrInvalid, v, v)
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			o[i] = T(n)
			continue
		}
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", arrow.ErrInvalid, s)
		}
		o[i] = T(u)
	}
	return o, nil
}

func floatsFromJSON[T float32 | float64](vs []any) ([]T, error) {
	o := make([]T, len(vs))
	for i, v := range vs {
		n, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%w: %v (%T) is not a number", arrow.ErrInvalid, v, v)
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", arrow.ErrInvalid, err)
		}
		o[i] = T(f)
	}
	return o, nil
}

func f16FromJSON(vs []any) ([]arrow.Float16, error) {
	fs, err := floatsFromJSON[float32](vs)
	if err != nil {
		return nil, err
	}
	o := make([]arrow.Float16, len(fs))
	for i, f := range fs {
		o[i] = arrow.NewFloat16(f)
	}
	return o, nil
}

// structsFromJSON converts decoded objects into T by a JSON round trip.
func structsFromJSON[T any](vs []any) ([]T, error) {
	o := make([]T, len(vs))
	for i, v := range vs {
		raw, err := json.Marshal(v)
		if err == nil {
			err = json.Unmarshal(raw, &o[i])
		}
		if err != nil {
			return nil, fmt.Errorf("%w: could not convert %v to %T: %s", arrow.ErrInvalid, v, o[i], err)
		}
	}
	return o, nil
}

// decimalsFromJSON reads unscaled integers and applies scale.
func decimalsFromJSON(vs []any, scale int32) ([]*apd.Decimal, error) {
	strs, err := strsFromJSON(vs)
	if err != nil {
		return nil, err
	}
	o := make([]*apd.Decimal, len(strs))
	for i, s := range strs {
		d, _, err := apd.NewFromString(s)
		if err != nil || d.Form != apd.Finite || d.Exponent != 0 {
			return nil, fmt.Errorf("%w: %q is not an unscaled decimal", arrow.ErrInvalid, s)
		}
		d.Exponent = -scale
		o[i] = d
	}
	return o, nil
}

func offsetsFromJSON[O int32 | int64](raw json.RawMessage) ([]O, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing OFFSET", arrow.ErrInvalid)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var vs []any
	if err := dec.Decode(&vs); err != nil {
		return nil, fmt.Errorf("%w: OFFSET: %s", arrow.ErrInvalid, err)
	}
	return intsFromJSON[O](vs)
}

func strsFromJSON(vs []any) ([]string, error) {
	o := make([]string, len(vs))
	for i, v := range vs {
		switch v := v.(type) {
		case string:
			o[i] = v
		case json.Number:
			o[i] = v.String()
		default:
			return nil, fmt.Errorf("%w: could not convert %v (%T) to a string", arrow.ErrInvalid, v, v)
		}
	}
	return o, nil
}

func bytesFromJSON(vs []any) ([][]byte, error) {
	strs, err := strsFromJSON(vs)
	if err != nil {
		return nil, err
	}
	o := make([][]byte, len(strs))
	for i, s := range strs {
		if o[i], err = hex.DecodeString(s); err != nil {
			return nil, fmt.Errorf("%w: could not decode %q: %s", arrow.ErrInvalid, s, err)
		}
	}
	return o, nil
}
