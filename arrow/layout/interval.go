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
	"github.com/columnar/carrow/arrow/memory"
	"github.com/columnar/carrow/internal/json"
)

// IntervalType is a multi-field interval stored as one fixed-width slot.
type IntervalType interface {
	arrow.DayTimeInterval | arrow.MonthDayNanoInterval
}

// Interval is the layout of "tiD" and "tin".
type Interval[T IntervalType] struct {
	arrayBase
}

func intervalID[T IntervalType]() arrow.Type {
	var z T
	if _, ok := any(z).(arrow.DayTimeInterval); ok {
		return arrow.INTERVAL_DAY_TIME
	}
	return arrow.INTERVAL_MONTH_DAY_NANO
}

func newInterval[T IntervalType](p *cdata.Proxy, dt arrow.DataType) (*Interval[T], error) {
	if dt.ID != intervalID[T]() {
		return nil, fmt.Errorf("%w: %s is not %s", arrow.ErrType, dt, intervalID[T]())
	}
	if err := checkBuffers(p, dt, 2); err != nil {
		return nil, err
	}
	if err := checkBufferLen(p, dt, 1, (p.Offset()+p.Len())*arrow.SizeOf[T]()); err != nil {
		return nil, err
	}
	a := &Interval[T]{}
	a.init(p, dt)
	return a, nil
}

func (a *Interval[T]) raw() []T { return arrow.GetData[T](a.proxy.Buffer(1)) }

func (a *Interval[T]) Value(i int) T {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	return a.raw()[a.proxy.Offset()+i]
}

func (a *Interval[T]) Values() []T {
	off := a.proxy.Offset()
	return a.raw()[off : off+a.Len()]
}

func (a *Interval[T]) At(i int) Nullable[T] {
	return Nullable[T]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *Interval[T]) Get(i int) (Nullable[T], error) { return checkedAt[T](a, i) }

func (a *Interval[T]) Iter() *Iterator[T] { return newIterator(a.Value, a.bitmap.Iterator()) }

func (a *Interval[T]) All() iter.Seq2[int, Nullable[T]] { return seq(a.Iter()) }

func (a *Interval[T]) Set(i int, v Nullable[T]) error {
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

func (a *Interval[T]) anyAt(i int) Nullable[any] {
	return Nullable[any]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *Interval[T]) GetOneForMarshal(i int) any {
	if a.IsNull(i) {
		return nil
	}
	return a.Value(i)
}

func (a *Interval[T]) ValueStr(i int) string {
	if a.IsNull(i) {
		return nullStr
	}
	data, err := json.Marshal(a.Value(i))
	debug.Assert(err == nil, "interval marshal")
	return string(data)
}

func (a *Interval[T]) Accept(v Visitor) error       { return v.VisitPrimitive(a) }
func (a *Interval[T]) String() string               { return formatArray(a) }
func (a *Interval[T]) MarshalJSON() ([]byte, error) { return marshalArray(a) }

// NewInterval returns an owned interval array. The type follows T.
func NewInterval[T IntervalType](mem memory.Allocator, vals []T, valid []bool) (*Interval[T], error) {
	bitmap, nulls, err := validityBuffer(mem, valid, len(vals))
	if err != nil {
		return nil, err
	}
	dt := arrow.DataType{ID: intervalID[T]()}
	data := memory.CopyBuffer(orDefault(mem), arrow.GetBytes(vals))
	p := ownedProxy(mem, dt, len(vals), nulls, []*memory.Buffer{bitmap, data}, nil, nil)
	a, err := newInterval[T](p, dt)
	if err != nil {
		p.Release()
		return nil, err
	}
	return a, nil
}

var (
	_ Layout[arrow.DayTimeInterval]      = (*Interval[arrow.DayTimeInterval])(nil)
	_ Layout[arrow.MonthDayNanoInterval] = (*Interval[arrow.MonthDayNanoInterval])(nil)
)
