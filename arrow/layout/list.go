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
	"iter"
	"strings"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/internal/debug"
	"github.com/columnar/carrow/arrow/memory"
)

// ListArray is the type-erased view of the list layouts. Element i is the
// range ValueOffsets(i) of ListValues.
type ListArray interface {
	Array
	ListValues() Array
	ValueOffsets(i int) (start, end int64)
}

// listBase holds the child layout shared by the list variants.
type listBase struct {
	arrayBase
	values Array
}

func (a *listBase) ListValues() Array { return a.values }

func listValue(a ListArray, i int) Array {
	s, e := a.ValueOffsets(i)
	v, err := NewSlice(a.ListValues(), int(s), int(e))
	debug.Assert(err == nil, "list child slice")
	return v
}

func listMarshal(a ListArray, i int) any {
	if a.IsNull(i) {
		return nil
	}
	s, e := a.ValueOffsets(i)
	out := make([]any, 0, e-s)
	for j := s; j < e; j++ {
		out = append(out, a.ListValues().GetOneForMarshal(int(j)))
	}
	return out
}

func listStr(a ListArray, i int) string {
	if a.IsNull(i) {
		return nullStr
	}
	s, e := a.ValueOffsets(i)
	var b strings.Builder
	b.WriteByte('[')
	for j := s; j < e; j++ {
		if j > s {
			b.WriteByte(' ')
		}
		b.WriteString(a.ListValues().ValueStr(int(j)))
	}
	b.WriteByte(']')
	return b.String()
}

func childLayout(p *cdata.Proxy, dt arrow.DataType) (Array, error) {
	if p.NumChildren() != 1 {
		return nil, fmt.Errorf("%w: %s array has %d children, expected 1", arrow.ErrInvalid, dt, p.NumChildren())
	}
	return MakeArray(p.Child(0))
}

// List is the layout of "+l" and "+L". The offsets buffer is laid out as
// for Binary but indexes elements of the single child.
type List[O int32 | int64] struct {
	listBase
}

func newList[O int32 | int64](p *cdata.Proxy, dt arrow.DataType) (*List[O], error) {
	if err := checkBuffers(p, dt, 2); err != nil {
		return nil, err
	}
	values, err := childLayout(p, dt)
	if err != nil {
		return nil, err
	}
	if err := checkOffsets[O](p, dt, values.Len()); err != nil {
		return nil, err
	}
	a := &List[O]{listBase{values: values}}
	a.init(p, dt)
	return a, nil
}

// Offsets returns the offsets of the logical window, Len()+1 entries.
func (a *List[O]) Offsets() []O {
	o := windowOffsets[O](a.proxy)
	if o == nil {
		return nil
	}
	return o[:a.Len()+1]
}

func (a *List[O]) ValueOffsets(i int) (int64, int64) {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	o := windowOffsets[O](a.proxy)
	return int64(o[i]), int64(o[i+1])
}

// Value returns a read-only slice of the child for element i ignoring
// validity.
func (a *List[O]) Value(i int) Array { return listValue(a, i) }

func (a *List[O]) At(i int) Nullable[Array] {
	return Nullable[Array]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *List[O]) Get(i int) (Nullable[Array], error) { return checkedAt[Array](a, i) }

func (a *List[O]) Iter() *Iterator[Array] { return newIterator(a.Value, a.bitmap.Iterator()) }

func (a *List[O]) All() iter.Seq2[int, Nullable[Array]] { return seq(a.Iter()) }

func (a *List[O]) anyAt(i int) Nullable[any] {
	return Nullable[any]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *List[O]) GetOneForMarshal(i int) any   { return listMarshal(a, i) }
func (a *List[O]) ValueStr(i int) string        { return listStr(a, i) }
func (a *List[O]) Accept(v Visitor) error       { return v.VisitList(a) }
func (a *List[O]) String() string               { return formatArray(a) }
func (a *List[O]) MarshalJSON() ([]byte, error) { return marshalArray(a) }

// FixedSizeList is the layout of "+w:N": element i is the N child values
// starting at (offset+i)*N.
type FixedSizeList struct {
	listBase
	size int
}

func newFixedSizeList(p *cdata.Proxy, dt arrow.DataType) (*FixedSizeList, error) {
	if dt.ListSize < 0 {
		return nil, fmt.Errorf("%w: %s", arrow.ErrInvalid, dt)
	}
	if err := checkBuffers(p, dt, 1); err != nil {
		return nil, err
	}
	values, err := childLayout(p, dt)
	if err != nil {
		return nil, err
	}
	size := int(dt.ListSize)
	if need := (p.Offset() + p.Len()) * size; values.Len() < need {
		return nil, fmt.Errorf("%w: %s child holds %d values, need %d", arrow.ErrInvalid, dt, values.Len(), need)
	}
	a := &FixedSizeList{listBase: listBase{values: values}, size: size}
	a.init(p, dt)
	return a, nil
}

func (a *FixedSizeList) ListSize() int { return a.size }

func (a *FixedSizeList) ValueOffsets(i int) (int64, int64) {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	s := int64(a.proxy.Offset()+i) * int64(a.size)
	return s, s + int64(a.size)
}

func (a *FixedSizeList) Value(i int) Array { return listValue(a, i) }

func (a *FixedSizeList) At(i int) Nullable[Array] {
	return Nullable[Array]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *FixedSizeList) Get(i int) (Nullable[Array], error) { return checkedAt[Array](a, i) }

func (a *FixedSizeList) Iter() *Iterator[Array] { return newIterator(a.Value, a.bitmap.Iterator()) }

func (a *FixedSizeList) All() iter.Seq2[int, Nullable[Array]] { return seq(a.Iter()) }

func (a *FixedSizeList) anyAt(i int) Nullable[any] {
	return Nullable[any]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *FixedSizeList) GetOneForMarshal(i int) any   { return listMarshal(a, i) }
func (a *FixedSizeList) ValueStr(i int) string        { return listStr(a, i) }
func (a *FixedSizeList) Accept(v Visitor) error       { return v.VisitList(a) }
func (a *FixedSizeList) String() string               { return formatArray(a) }
func (a *FixedSizeList) MarshalJSON() ([]byte, error) { return marshalArray(a) }

// attachValues moves the structures of values under p as its only child.
func attachValues(p *cdata.Proxy, values Array) error {
	arr, sch, err := values.Proxy().Extract()
	if err != nil {
		return err
	}
	return p.AddChild(arr, sch)
}

func ownedValues(values Array) error {
	vp := values.Proxy()
	if !vp.OwnsArray() || !vp.OwnsSchema() {
		return fmt.Errorf("%w: list values must be owned", arrow.ErrReadOnly)
	}
	return nil
}

func newListValues[O int32 | int64](mem memory.Allocator, dt arrow.DataType, offsets []O, valid []bool, values Array) (*List[O], error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least one offset", arrow.ErrInvalid, dt)
	}
	if err := ownedValues(values); err != nil {
		return nil, err
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("%w: offset %d decreases", arrow.ErrInvalid, i)
		}
	}
	if offsets[0] < 0 || int64(offsets[len(offsets)-1]) > int64(values.Len()) {
		return nil, fmt.Errorf("%w: offsets [%d, %d] over %d values", arrow.ErrInvalid,
			offsets[0], offsets[len(offsets)-1], values.Len())
	}
	n := len(offsets) - 1
	bitmap, nulls, err := validityBuffer(mem, valid, n)
	if err != nil {
		return nil, err
	}

	offs := memory.CopyBuffer(orDefault(mem), arrow.GetBytes(offsets))
	p := ownedProxy(mem, dt, n, nulls, []*memory.Buffer{bitmap, offs}, nil, nil)
	if err := attachValues(p, values); err != nil {
		p.Release()
		return nil, err
	}
	a, err := newList[O](p, dt)
	if err != nil {
		p.Release()
		return nil, err
	}
	return a, nil
}

// NewList returns an owned list array whose element i is
// values[offsets[i]:offsets[i+1]]. It takes ownership of values, which
// must own its structures; on error before the move values is untouched.
func NewList(mem memory.Allocator, offsets []int32, valid []bool, values Array) (*List[int32], error) {
	return newListValues(mem, arrow.DataType{ID: arrow.LIST}, offsets, valid, values)
}

// NewLargeList is NewList with 64-bit offsets.
func NewLargeList(mem memory.Allocator, offsets []int64, valid []bool, values Array) (*List[int64], error) {
	return newListValues(mem, arrow.DataType{ID: arrow.LARGE_LIST}, offsets, valid, values)
}

// NewFixedSizeList returns an owned list of values.Len()/size elements of
// size values each. It takes ownership of values.
func NewFixedSizeList(mem memory.Allocator, size int, valid []bool, values Array) (*FixedSizeList, error) {
	if size <= 0 || values.Len()%size != 0 {
		return nil, fmt.Errorf("%w: %d values do not split into lists of %d", arrow.ErrInvalid, values.Len(), size)
	}
	if err := ownedValues(values); err != nil {
		return nil, err
	}
	n := values.Len() / size
	bitmap, nulls, err := validityBuffer(mem, valid, n)
	if err != nil {
		return nil, err
	}

	dt := arrow.DataType{ID: arrow.FIXED_SIZE_LIST, ListSize: int32(size)}
	p := ownedProxy(mem, dt, n, nulls, []*memory.Buffer{bitmap}, nil, nil)
	if err := attachValues(p, values); err != nil {
		p.Release()
		return nil, err
	}
	a, err := newFixedSizeList(p, dt)
	if err != nil {
		p.Release()
		return nil, err
	}
	return a, nil
}

var (
	_ Layout[Array] = (*List[int32])(nil)
	_ Layout[Array] = (*FixedSizeList)(nil)
	_ ListArray     = (*List[int64])(nil)
)
