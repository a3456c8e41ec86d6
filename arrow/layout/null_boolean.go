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
	"iter"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/bitmap"
	"github.com/columnar/carrow/arrow/bitutil"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/internal/debug"
)

// Null is the layout of the null type: no buffers, every element invalid.
type Null struct {
	proxy *cdata.Proxy
}

func newNull(p *cdata.Proxy) *Null { return &Null{proxy: p} }

func (a *Null) Len() int                 { return a.proxy.Len() }
func (a *Null) NullN() int               { return a.proxy.Len() }
func (a *Null) IsValid(i int) bool       { return false }
func (a *Null) IsNull(i int) bool        { return true }
func (a *Null) DataType() arrow.DataType { return arrow.DataType{ID: arrow.NULL} }
func (a *Null) Proxy() *cdata.Proxy      { return a.proxy }
func (a *Null) Release()                 { a.proxy.Release() }
func (a *Null) Accept(v Visitor) error   { return v.VisitNull(a) }
func (a *Null) ValueStr(int) string      { return nullStr }
func (a *Null) GetOneForMarshal(int) any { return nil }

func (a *Null) At(i int) Nullable[any] {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	return Nullable[any]{}
}

func (a *Null) anyAt(i int) Nullable[any] { return a.At(i) }

func (a *Null) Get(i int) (Nullable[any], error) { return checkedAt[any](a, i) }

func (a *Null) Iter() *Iterator[any] {
	it := newIterator(func(int) any { return nil }, bitmap.NewView(nil, 0, a.Len()).Iterator())
	it.check = func(int) bool { return false }
	return it
}

func (a *Null) All() iter.Seq2[int, Nullable[any]] { return seq(a.Iter()) }

func (a *Null) String() string               { return formatArray(a) }
func (a *Null) MarshalJSON() ([]byte, error) { return marshalArray(a) }

// Boolean is the layout of bit-packed booleans.
type Boolean struct {
	arrayBase
}

func newBoolean(p *cdata.Proxy, dt arrow.DataType) (*Boolean, error) {
	if err := checkBuffers(p, dt, 2); err != nil {
		return nil, err
	}
	if err := checkBufferLen(p, dt, 1, bitsLen(p)); err != nil {
		return nil, err
	}
	a := &Boolean{}
	a.init(p, dt)
	return a, nil
}

// Value returns element i ignoring validity.
func (a *Boolean) Value(i int) bool {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	return bitutil.BitIsSet(a.proxy.Buffer(1), a.proxy.Offset()+i)
}

func (a *Boolean) At(i int) Nullable[bool] {
	return Nullable[bool]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *Boolean) Get(i int) (Nullable[bool], error) { return checkedAt[bool](a, i) }

func (a *Boolean) Iter() *Iterator[bool] { return newIterator(a.Value, a.bitmap.Iterator()) }

func (a *Boolean) All() iter.Seq2[int, Nullable[bool]] { return seq(a.Iter()) }

// Set overwrites element i.
func (a *Boolean) Set(i int, v Nullable[bool]) error {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	buf, err := a.proxy.MutableBuffer(1)
	if err != nil {
		return err
	}
	bitutil.SetBitTo(buf.Bytes(), a.proxy.Offset()+i, v.Value && v.Valid)
	a.bitmap.Set(i, v.Valid)
	return a.commit(a.Len())
}

func (a *Boolean) anyAt(i int) Nullable[any] {
	n := a.At(i)
	return Nullable[any]{Value: n.Value, Valid: n.Valid}
}

func (a *Boolean) GetOneForMarshal(i int) any {
	if a.IsNull(i) {
		return nil
	}
	return a.Value(i)
}

func (a *Boolean) ValueStr(i int) string        { return valueStr[bool](a, i) }
func (a *Boolean) Accept(v Visitor) error       { return v.VisitBoolean(a) }
func (a *Boolean) String() string               { return formatArray(a) }
func (a *Boolean) MarshalJSON() ([]byte, error) { return marshalArray(a) }

var (
	_ Layout[any]  = (*Null)(nil)
	_ Layout[bool] = (*Boolean)(nil)
)
