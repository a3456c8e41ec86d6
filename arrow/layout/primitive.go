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
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/internal/debug"
)

// Primitive is the layout of fixed-width numeric and temporal values.
type Primitive[T arrow.FixedWidthType] struct {
	arrayBase
}

func newPrimitive[T arrow.FixedWidthType](p *cdata.Proxy, dt arrow.DataType) (*Primitive[T], error) {
	if dt.BitWidth() != arrow.SizeOf[T]()*8 {
		return nil, fmt.Errorf("%w: %s values are %d bits wide, layout expects %d",
			arrow.ErrType, dt, dt.BitWidth(), arrow.SizeOf[T]()*8)
	}
	if err := checkBuffers(p, dt, 2); err != nil {
		return nil, err
	}
	if err := checkBufferLen(p, dt, 1, (p.Offset()+p.Len())*arrow.SizeOf[T]()); err != nil {
		return nil, err
	}
	a := &Primitive[T]{}
	a.init(p, dt)
	return a, nil
}

func (a *Primitive[T]) raw() []T { return arrow.GetData[T](a.proxy.Buffer(1)) }

// Value returns element i ignoring validity.
func (a *Primitive[T]) Value(i int) T {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	return a.raw()[a.proxy.Offset()+i]
}

// Values returns the logical window of the value buffer.
func (a *Primitive[T]) Values() []T {
	off := a.proxy.Offset()
	return a.raw()[off : off+a.Len()]
}

func (a *Primitive[T]) At(i int) Nullable[T] {
	return Nullable[T]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *Primitive[T]) Get(i int) (Nullable[T], error) { return checkedAt[T](a, i) }

func (a *Primitive[T]) Iter() *Iterator[T] { return newIterator(a.Value, a.bitmap.Iterator()) }

func (a *Primitive[T]) All() iter.Seq2[int, Nullable[T]] { return seq(a.Iter()) }

// Set overwrites element i. The stored value of a null is zero.
func (a *Primitive[T]) Set(i int, v Nullable[T]) error {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	buf, err := a.proxy.MutableBuffer(1)
	if err != nil {
		return err
	}
	var val T
	if v.Valid {
		val = v.Value
	}
	arrow.GetData[T](buf.Bytes())[a.proxy.Offset()+i] = val
	a.bitmap.Set(i, v.Valid)
	return a.commit(a.Len())
}

func (a *Primitive[T]) anyAt(i int) Nullable[any] {
	return Nullable[any]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *Primitive[T]) GetOneForMarshal(i int) any {
	if a.IsNull(i) {
		return nil
	}
	switch v := any(a.Value(i)).(type) {
	case arrow.Float16:
		return v.Float32()
	default:
		return v
	}
}

func (a *Primitive[T]) ValueStr(i int) string        { return valueStr[T](a, i) }
func (a *Primitive[T]) Accept(v Visitor) error       { return v.VisitPrimitive(a) }
func (a *Primitive[T]) String() string               { return formatArray(a) }
func (a *Primitive[T]) MarshalJSON() ([]byte, error) { return marshalArray(a) }

var (
	_ Layout[int32]           = (*Primitive[int32])(nil)
	_ Layout[arrow.Timestamp] = (*Primitive[arrow.Timestamp])(nil)
)
