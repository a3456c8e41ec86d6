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

import "github.com/columnar/carrow/arrow/bitmap"

// Iterator walks a layout by advancing a value cursor and a bitmap cursor
// in lock-step. Value yields the same pair as indexing the layout.
type Iterator[T any] struct {
	idx   int
	value func(int) T
	valid *bitmap.Iterator
	// check refines validity beyond the bitmap, as dictionaries do.
	check func(int) bool
}

func newIterator[T any](value func(int) T, valid *bitmap.Iterator) *Iterator[T] {
	return &Iterator[T]{idx: -1, value: value, valid: valid}
}

// Next moves to the next element and reports whether there is one.
func (it *Iterator[T]) Next() bool {
	ok := it.valid.Next()
	it.idx = it.valid.Index()
	return ok
}

// Advance skips n elements.
func (it *Iterator[T]) Advance(n int) {
	it.valid.Advance(n)
	it.idx = it.valid.Index()
}

func (it *Iterator[T]) Index() int { return it.idx }

// Distance returns the number of elements from it to other.
func (it *Iterator[T]) Distance(other *Iterator[T]) int { return other.idx - it.idx }

func (it *Iterator[T]) Value() Nullable[T] {
	ok := it.valid.Value()
	if ok && it.check != nil {
		ok = it.check(it.idx)
	}
	return Nullable[T]{Value: it.value(it.idx), Valid: ok}
}
