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

	"golang.org/x/exp/constraints"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/internal/debug"
)

// DictionaryArray is the type-erased view of a dictionary-encoded layout.
type DictionaryArray interface {
	Array
	// Indices returns the keys layout.
	Indices() Array
	// Values returns the dictionary layout the keys point into.
	Values() Array
	// GetValueIndex returns the key at i. It must not be called on a null key.
	GetValueIndex(i int) int
	IndexType() arrow.DataType
	ValueType() arrow.DataType
}

// Dictionary is the layout of dictionary-encoded arrays. The keys live on
// the array itself and the values on its dictionary; neither is copied.
// Element i is invalid when its key is null or the value it refers to is.
type Dictionary[K constraints.Integer] struct {
	keys   *Primitive[K]
	values Array
}

func newDictionary[K constraints.Integer](p *cdata.Proxy) (*Dictionary[K], error) {
	d := &Dictionary[K]{}
	if err := d.Rebind(p); err != nil {
		return nil, err
	}
	return d, nil
}

// Rebind attaches d to the keys of p and the values of p's dictionary.
// On error d is left unchanged.
func (d *Dictionary[K]) Rebind(p *cdata.Proxy) error {
	debug.Assert(p.Dictionary() != nil, "dictionary layout over an array without dictionary")
	dt, err := p.DataType()
	if err != nil {
		return err
	}
	keys, err := newPrimitive[K](p, dt)
	if err != nil {
		return err
	}
	values, err := MakeArray(p.Dictionary())
	if err != nil {
		return err
	}

	for i, k := range keys.All() {
		if k.Valid && (k.Value < 0 || uint64(k.Value) >= uint64(values.Len())) {
			return fmt.Errorf("%w: key %d at %d outside dictionary of %d values",
				arrow.ErrIndex, k.Value, i, values.Len())
		}
	}
	d.keys, d.values = keys, values
	return nil
}

func (d *Dictionary[K]) Keys() *Primitive[K]     { return d.keys }
func (d *Dictionary[K]) Indices() Array          { return d.keys }
func (d *Dictionary[K]) Values() Array           { return d.values }
func (d *Dictionary[K]) Len() int                { return d.keys.Len() }
func (d *Dictionary[K]) Proxy() *cdata.Proxy     { return d.keys.Proxy() }
func (d *Dictionary[K]) Release()                { d.keys.Release() }
func (d *Dictionary[K]) Index(i int) Nullable[K] { return d.keys.At(i) }

func (d *Dictionary[K]) GetValueIndex(i int) int { return int(d.keys.Value(i)) }

func (d *Dictionary[K]) DataType() arrow.DataType  { return arrow.DataType{ID: arrow.DICTIONARY} }
func (d *Dictionary[K]) IndexType() arrow.DataType { return d.keys.DataType() }
func (d *Dictionary[K]) ValueType() arrow.DataType { return d.values.DataType() }

func (d *Dictionary[K]) IsValid(i int) bool {
	return d.keys.IsValid(i) && d.values.IsValid(d.GetValueIndex(i))
}

func (d *Dictionary[K]) IsNull(i int) bool { return !d.IsValid(i) }

func (d *Dictionary[K]) NullN() int {
	if d.values.NullN() == 0 {
		return d.keys.NullN()
	}
	n := 0
	for i := range d.Len() {
		if !d.IsValid(i) {
			n++
		}
	}
	return n
}

// At returns the dictionary value for key i, or an empty invalid value
// when the key is null.
func (d *Dictionary[K]) At(i int) Nullable[any] {
	k := d.keys.At(i)
	if !k.Valid {
		return Nullable[any]{}
	}
	return d.values.anyAt(int(k.Value))
}

func (d *Dictionary[K]) anyAt(i int) Nullable[any] { return d.At(i) }

func (d *Dictionary[K]) Get(i int) (Nullable[any], error) { return checkedAt[any](d, i) }

func (d *Dictionary[K]) Iter() *Iterator[any] {
	it := newIterator(func(i int) any { return d.At(i).Value }, d.keys.bitmap.Iterator())
	it.check = func(i int) bool { return d.values.IsValid(d.GetValueIndex(i)) }
	return it
}

func (d *Dictionary[K]) All() iter.Seq2[int, Nullable[any]] { return seq(d.Iter()) }

func (d *Dictionary[K]) GetOneForMarshal(i int) any {
	if !d.IsValid(i) {
		return nil
	}
	return d.values.GetOneForMarshal(d.GetValueIndex(i))
}

func (d *Dictionary[K]) ValueStr(i int) string {
	if !d.IsValid(i) {
		return nullStr
	}
	return d.values.ValueStr(d.GetValueIndex(i))
}

func (d *Dictionary[K]) Accept(v Visitor) error { return v.VisitDictionary(d) }

func (d *Dictionary[K]) String() string {
	return fmt.Sprintf("{ dictionary: %v\n  indices: %v }", d.values, d.keys)
}

func (d *Dictionary[K]) MarshalJSON() ([]byte, error) { return marshalArray(d) }

var (
	_ Layout[any]     = (*Dictionary[int32])(nil)
	_ DictionaryArray = (*Dictionary[uint8])(nil)
)
