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

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/bitmap"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/memory"
	"github.com/columnar/carrow/internal/json"
)

// Nullable pairs a value with its validity.
type Nullable[T any] struct {
	Value T
	Valid bool
}

// Some returns a valid Nullable holding v.
func Some[T any](v T) Nullable[T] { return Nullable[T]{Value: v, Valid: true} }

// None returns an invalid Nullable.
func None[T any]() Nullable[T] { return Nullable[T]{} }

func (n Nullable[T]) HasValue() bool { return n.Valid }

func (n Nullable[T]) Get() (T, bool) { return n.Value, n.Valid }

func (n Nullable[T]) ValueOr(def T) T {
	if n.Valid {
		return n.Value
	}
	return def
}

// Array is the type-erased handle over the closed set of layouts in this
// package.
type Array interface {
	fmt.Stringer
	json.Marshaler

	Len() int
	NullN() int
	IsValid(i int) bool
	IsNull(i int) bool
	DataType() arrow.DataType
	Proxy() *cdata.Proxy
	// ValueStr renders element i, "(null)" when invalid.
	ValueStr(i int) string
	// GetOneForMarshal returns element i as a JSON-ready value, nil when
	// invalid.
	GetOneForMarshal(i int) any
	Accept(Visitor) error
	// Release releases the underlying proxy.
	Release()

	anyAt(i int) Nullable[any]
}

// Layout is implemented by every concrete layout with element type T.
type Layout[T any] interface {
	Array
	At(i int) Nullable[T]
	Get(i int) (Nullable[T], error)
	Iter() *Iterator[T]
	All() iter.Seq2[int, Nullable[T]]
}

// Visitor is dispatched on the concrete layout by Array.Accept. Intervals
// visit as primitives and uuids as their fixed-size binary storage.
type Visitor interface {
	VisitNull(*Null) error
	VisitBoolean(*Boolean) error
	VisitPrimitive(Array) error
	VisitFixedSizeBinary(*FixedSizeBinary) error
	VisitDecimal(*Decimal) error
	VisitBinary(*Binary[int32]) error
	VisitLargeBinary(*Binary[int64]) error
	VisitList(ListArray) error
	VisitDictionary(DictionaryArray) error
}

// arrayBase carries what every nullable layout shares: the proxy, its
// decoded type and a validity bitmap derived from buffer 0.
type arrayBase struct {
	proxy  *cdata.Proxy
	dt     arrow.DataType
	bitmap *bitmap.Tracked
}

func (a *arrayBase) init(p *cdata.Proxy, dt arrow.DataType) {
	a.proxy, a.dt = p, dt
	a.resetBitmap()
}

// resetBitmap derives the bitmap from the proxy again. Layouts never share
// bitmap state with a copy.
func (a *arrayBase) resetBitmap() {
	var buf *memory.Buffer
	if a.proxy.NumBuffers() > 0 && arrow.HasValidityBitmap(a.dt.ID) {
		if b, err := a.proxy.MutableBuffer(0); err == nil {
			buf = b
		} else {
			buf = memory.NewBufferBytes(a.proxy.Buffer(0))
		}
	}
	a.bitmap = bitmap.NewTracked(a.proxy.Allocator(), buf, a.proxy.Offset(), a.proxy.Len())
}

func (a *arrayBase) Len() int                 { return a.proxy.Len() }
func (a *arrayBase) NullN() int               { return a.bitmap.NullCount() }
func (a *arrayBase) IsValid(i int) bool       { return a.bitmap.IsSet(i) }
func (a *arrayBase) IsNull(i int) bool        { return !a.bitmap.IsSet(i) }
func (a *arrayBase) DataType() arrow.DataType { return a.dt }
func (a *arrayBase) Proxy() *cdata.Proxy      { return a.proxy }
func (a *arrayBase) Release()                 { a.proxy.Release() }

// Bitmap exposes the validity bitmap. It must not be mutated directly.
func (a *arrayBase) Bitmap() *bitmap.Tracked { return a.bitmap }

func (a *arrayBase) mutable() error {
	if !a.proxy.IsMutable() {
		return fmt.Errorf("%w: %s array is borrowed or externally allocated", arrow.ErrReadOnly, a.dt)
	}
	return nil
}

// commit publishes a new length and the tracked null count to the proxy.
func (a *arrayBase) commit(n int) error {
	if err := a.proxy.SetLength(n); err != nil {
		return err
	}
	if err := a.proxy.SetNullCount(a.bitmap.NullCount()); err != nil {
		return err
	}
	a.proxy.UpdateBuffers()
	return nil
}

func indexError(i, n int) error {
	return fmt.Errorf("%w: index %d out of range [0, %d)", arrow.ErrIndex, i, n)
}

type indexable[T any] interface {
	Len() int
	At(i int) Nullable[T]
}

func checkedAt[T any](a indexable[T], i int) (Nullable[T], error) {
	if i < 0 || i >= a.Len() {
		return Nullable[T]{}, indexError(i, a.Len())
	}
	return a.At(i), nil
}

func seq[T any](it *Iterator[T]) iter.Seq2[int, Nullable[T]] {
	return func(yield func(int, Nullable[T]) bool) {
		for it.Next() {
			if !yield(it.Index(), it.Value()) {
				return
			}
		}
	}
}
