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

package layout

import (
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/bitutil"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/internal/hashing"
	"github.com/columnar/carrow/arrow/memory"
)

// validityBuffer packs valid into a bitmap. A nil valid means no nulls and
// yields no bitmap.
func validityBuffer(mem memory.Allocator, valid []bool, n int) (*memory.Buffer, int, error) {
	if valid == nil {
		return nil, 0, nil
	}
	if len(valid) != n {
		return nil, 0, fmt.Errorf("%w: %d validity entries for %d values", arrow.ErrInvalid, len(valid), n)
	}
	buf := memory.NewResizableBuffer(orDefault(mem))
	buf.Resize(int(bitutil.BytesForBits(int64(n))))
	nulls := 0
	for i, v := range valid {
		bitutil.SetBitTo(buf.Bytes(), i, v)
		if !v {
			nulls++
		}
	}
	return buf, nulls, nil
}

func ownedProxy(mem memory.Allocator, dt arrow.DataType, n, nulls int, bufs []*memory.Buffer, dictArr *cdata.ArrowArray, dictSch *cdata.ArrowSchema) *cdata.Proxy {
	mem = orDefault(mem)
	arr := cdata.NewArrowArray(mem, int64(n), int64(nulls), 0, bufs, nil, dictArr)
	sch := cdata.NewArrowSchema(dt.Format(), "", arrow.Metadata{}, arrow.NewFlags(arrow.FlagNullable), nil, dictSch)
	return cdata.NewProxy(arr, sch, cdata.WithAllocator(mem))
}

// NewNull returns an owned null array of n elements.
func NewNull(n int) *Null {
	return newNull(ownedProxy(nil, arrow.DataType{ID: arrow.NULL}, n, n, nil, nil, nil))
}

// NewBoolean returns an owned boolean array. valid may be nil.
func NewBoolean(mem memory.Allocator, vals []bool, valid []bool) (*Boolean, error) {
	bitmap, nulls, err := validityBuffer(mem, valid, len(vals))
	if err != nil {
		return nil, err
	}
	data := memory.NewResizableBuffer(orDefault(mem))
	data.Resize(int(bitutil.BytesForBits(int64(len(vals)))))
	for i, v := range vals {
		bitutil.SetBitTo(data.Bytes(), i, v)
	}
	dt := arrow.DataType{ID: arrow.BOOL}
	p := ownedProxy(mem, dt, len(vals), nulls, []*memory.Buffer{bitmap, data}, nil, nil)
	a, err := newBoolean(p, dt)
	if err != nil {
		p.Release()
		return nil, err
	}
	return a, nil
}

// typeOf returns the type of T when it needs no parameters.
func typeOf[T arrow.FixedWidthType]() (arrow.DataType, error) {
	var id arrow.Type
	switch any(*new(T)).(type) {
	case int8:
		id = arrow.INT8
	case uint8:
		id = arrow.UINT8
	case int16:
		id = arrow.INT16
	case uint16:
		id = arrow.UINT16
	case int32:
		id = arrow.INT32
	case uint32:
		id = arrow.UINT32
	case int64:
		id = arrow.INT64
	case uint64:
		id = arrow.UINT64
	case arrow.Float16:
		id = arrow.FLOAT16
	case float32:
		id = arrow.FLOAT32
	case float64:
		id = arrow.FLOAT64
	case arrow.Date32:
		id = arrow.DATE32
	case arrow.Date64:
		id = arrow.DATE64
	case arrow.MonthInterval:
		id = arrow.INTERVAL_MONTHS
	default:
		return arrow.DataType{}, fmt.Errorf("%w: %T needs an explicit type", arrow.ErrType, *new(T))
	}
	return arrow.DataType{ID: id}, nil
}

// NewPrimitive returns an owned array of vals. The type is inferred from T;
// temporal types with a unit go through NewPrimitiveOf.
func NewPrimitive[T arrow.FixedWidthType](mem memory.Allocator, vals []T, valid []bool) (*Primitive[T], error) {
	dt, err := typeOf[T]()
	if err != nil {
		return nil, err
	}
	return NewPrimitiveOf(mem, dt, vals, valid)
}

// NewPrimitiveOf is NewPrimitive with an explicit type.
func NewPrimitiveOf[T arrow.FixedWidthType](mem memory.Allocator, dt arrow.DataType, vals []T, valid []bool) (*Primitive[T], error) {
	bitmap, nulls, err := validityBuffer(mem, valid, len(vals))
	if err != nil {
		return nil, err
	}
	data := memory.CopyBuffer(orDefault(mem), arrow.GetBytes(vals))
	p := ownedProxy(mem, dt, len(vals), nulls, []*memory.Buffer{bitmap, data}, nil, nil)
	a, err := newPrimitive[T](p, dt)
	if err != nil {
		p.Release()
		return nil, err
	}
	return a, nil
}

func orDefault(mem memory.Allocator) memory.Allocator {
	if mem == nil {
		return memory.DefaultAllocator
	}
	return mem
}

func newBinaryValues[O int32 | int64](mem memory.Allocator, dt arrow.DataType, vals [][]byte, valid []bool) (*Binary[O], error) {
	bitmap, nulls, err := validityBuffer(mem, valid, len(vals))
	if err != nil {
		return nil, err
	}

	offsets := make([]O, len(vals)+1)
	var total O
	for i, v := range vals {
		if total, err = shiftOffset(total, int64(len(v))); err != nil {
			if bitmap != nil {
				bitmap.Release()
			}
			return nil, err
		}
		offsets[i+1] = total
	}
	data := memory.NewResizableBuffer(orDefault(mem))
	data.Reserve(int(total))
	for _, v := range vals {
		data.Insert(data.Len(), v)
	}

	offs := memory.CopyBuffer(orDefault(mem), arrow.GetBytes(offsets))
	p := ownedProxy(mem, dt, len(vals), nulls, []*memory.Buffer{bitmap, offs, data}, nil, nil)
	a, err := newBinary[O](p, dt)
	if err != nil {
		p.Release()
		return nil, err
	}
	return a, nil
}

func toBytes(vals []string) [][]byte {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out
}

// NewString returns an owned utf8 array with 32-bit offsets.
func NewString(mem memory.Allocator, vals []string, valid []bool) (*Binary[int32], error) {
	return newBinaryValues[int32](mem, arrow.DataType{ID: arrow.STRING}, toBytes(vals), valid)
}

// NewLargeString returns an owned utf8 array with 64-bit offsets.
func NewLargeString(mem memory.Allocator, vals []string, valid []bool) (*Binary[int64], error) {
	return newBinaryValues[int64](mem, arrow.DataType{ID: arrow.LARGE_STRING}, toBytes(vals), valid)
}

func NewBinary(mem memory.Allocator, vals [][]byte, valid []bool) (*Binary[int32], error) {
	return newBinaryValues[int32](mem, arrow.DataType{ID: arrow.BINARY}, vals, valid)
}

func NewLargeBinary(mem memory.Allocator, vals [][]byte, valid []bool) (*Binary[int64], error) {
	return newBinaryValues[int64](mem, arrow.DataType{ID: arrow.LARGE_BINARY}, vals, valid)
}

// NewDictionary returns an owned dictionary array with the given keys over
// values. It takes ownership of values, which must own its structures; on
// error values is left untouched.
func NewDictionary[K constraints.Integer](mem memory.Allocator, keys []K, valid []bool, values Array) (*Dictionary[K], error) {
	kt, err := typeOf[K]()
	if err != nil {
		return nil, err
	}
	if kt.ID == arrow.FLOAT16 {
		return nil, fmt.Errorf("%w: dictionary keys must be integers", arrow.ErrType)
	}
	vp := values.Proxy()
	if !vp.OwnsArray() || !vp.OwnsSchema() {
		return nil, fmt.Errorf("%w: dictionary values must be owned", arrow.ErrReadOnly)
	}
	if valid != nil && len(valid) != len(keys) {
		return nil, fmt.Errorf("%w: %d validity entries for %d keys", arrow.ErrInvalid, len(valid), len(keys))
	}
	for i, k := range keys {
		if (valid == nil || valid[i]) && (k < 0 || uint64(k) >= uint64(values.Len())) {
			return nil, fmt.Errorf("%w: key %d at %d outside dictionary of %d values", arrow.ErrIndex, k, i, values.Len())
		}
	}
	bitmap, nulls, err := validityBuffer(mem, valid, len(keys))
	if err != nil {
		return nil, err
	}

	dictArr, dictSch, err := vp.Extract()
	if err != nil {
		if bitmap != nil {
			bitmap.Release()
		}
		return nil, err
	}
	data := memory.CopyBuffer(orDefault(mem), arrow.GetBytes(keys))
	p := ownedProxy(mem, kt, len(keys), nulls, []*memory.Buffer{bitmap, data}, dictArr, dictSch)
	d, err := newDictionary[K](p)
	if err != nil {
		p.Release()
		return nil, err
	}
	return d, nil
}

// DictionaryEncode hashes vals into a utf8 dictionary of distinct values
// in first-seen order and returns the keys over it. Null entries get key 0.
func DictionaryEncode[K constraints.Integer](mem memory.Allocator, vals []string, valid []bool) (*Dictionary[K], error) {
	if valid != nil && len(valid) != len(vals) {
		return nil, fmt.Errorf("%w: %d validity entries for %d values", arrow.ErrInvalid, len(valid), len(vals))
	}
	memo := hashing.NewBinaryMemoTable(len(vals))
	keys := make([]K, len(vals))
	for i, v := range vals {
		if valid != nil && !valid[i] {
			continue
		}
		idx, _, err := memo.GetOrInsertString(v)
		if err != nil {
			return nil, err
		}
		if int(K(idx)) != idx {
			return nil, fmt.Errorf("%w: %d distinct values do not fit the key type", arrow.ErrOverflow, idx+1)
		}
		keys[i] = K(idx)
	}

	dict, err := newBinaryValues[int32](mem, arrow.DataType{ID: arrow.STRING}, memo.Values(), nil)
	if err != nil {
		return nil, err
	}
	out, err := NewDictionary(mem, keys, valid, dict)
	if err != nil {
		dict.Release()
		return nil, err
	}
	return out, nil
}
