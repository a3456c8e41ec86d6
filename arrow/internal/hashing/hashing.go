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

// Package hashing provides the memo table used to dictionary-encode binary
// values.
package hashing

import (
	"bytes"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/internal/utils"
)

const (
	loadFactor   = 2
	initialSlots = 32
	emptySlot    = -1
)

var errOverflow = fmt.Errorf("%w: memo table values exceed int32 offsets", arrow.ErrOverflow)

type entry struct {
	hash uint64
	idx  int32
}

// BinaryMemoTable assigns consecutive indices to distinct byte strings in
// insertion order. Lookups use open addressing with linear probing over
// xxh3 hashes.
type BinaryMemoTable struct {
	slots   []entry
	offsets []int32
	data    []byte
}

func NewBinaryMemoTable(capacity int) *BinaryMemoTable {
	n := initialSlots
	for n < capacity*loadFactor {
		n <<= 1
	}
	t := &BinaryMemoTable{offsets: []int32{0}}
	t.slots = newSlots(n)
	return t
}

func newSlots(n int) []entry {
	s := make([]entry, n)
	for i := range s {
		s[i].idx = emptySlot
	}
	return s
}

func (t *BinaryMemoTable) Len() int { return len(t.offsets) - 1 }

// Value returns the bytes stored at index i.
func (t *BinaryMemoTable) Value(i int) []byte {
	return t.data[t.offsets[i]:t.offsets[i+1]]
}

// Values returns every stored value in index order.
func (t *BinaryMemoTable) Values() [][]byte {
	out := make([][]byte, t.Len())
	for i := range out {
		out[i] = t.Value(i)
	}
	return out
}

// ValueOffsets returns the int32 offsets of the concatenated values.
func (t *BinaryMemoTable) ValueOffsets() []int32 { return t.offsets }

// ValueData returns the concatenated values.
func (t *BinaryMemoTable) ValueData() []byte { return t.data }

func (t *BinaryMemoTable) lookup(h uint64, v []byte) (int, bool) {
	mask := uint64(len(t.slots) - 1)
	for i := h & mask; ; i = (i + 1) & mask {
		e := t.slots[i]
		if e.idx == emptySlot {
			return int(i), false
		}
		if e.hash == h && bytes.Equal(t.Value(int(e.idx)), v) {
			return int(i), true
		}
	}
}

// Get returns the index of v, or -1 if it was never inserted.
func (t *BinaryMemoTable) Get(v []byte) int {
	slot, ok := t.lookup(xxh3.Hash(v), v)
	if !ok {
		return -1
	}
	return int(t.slots[slot].idx)
}

// GetOrInsert returns the index of v, inserting it when absent. found
// reports whether it was already present. It fails when the concatenated
// values no longer fit int32 offsets.
func (t *BinaryMemoTable) GetOrInsert(v []byte) (idx int, found bool, err error) {
	h := xxh3.Hash(v)
	slot, ok := t.lookup(h, v)
	if ok {
		return int(t.slots[slot].idx), true, nil
	}

	end, ok := utils.Add(t.offsets[len(t.offsets)-1], int32(len(v)))
	if !ok || len(v) > int(^uint32(0)>>1) {
		return 0, false, errOverflow
	}
	idx = t.Len()
	t.data = append(t.data, v...)
	t.offsets = append(t.offsets, end)
	t.slots[slot] = entry{hash: h, idx: int32(idx)}
	if t.Len()*loadFactor > len(t.slots) {
		t.grow()
	}
	return idx, false, nil
}

func (t *BinaryMemoTable) GetOrInsertString(v string) (int, bool, error) {
	return t.GetOrInsert([]byte(v))
}

func (t *BinaryMemoTable) grow() {
	old := t.slots
	t.slots = newSlots(len(old) * 2)
	mask := uint64(len(t.slots) - 1)
	for _, e := range old {
		if e.idx == emptySlot {
			continue
		}
		i := e.hash & mask
		for t.slots[i].idx != emptySlot {
			i = (i + 1) & mask
		}
		t.slots[i] = e
	}
}
