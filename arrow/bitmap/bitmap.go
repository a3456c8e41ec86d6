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

// Package bitmap implements the validity bitmap shared by every layout,
// together with the policies that decide how its null count is kept.
package bitmap

import (
	"iter"

	"github.com/columnar/carrow/arrow/bitutil"
	"github.com/columnar/carrow/arrow/internal/debug"
	"github.com/columnar/carrow/arrow/memory"
)

// Bitmap is a packed validity vector of Len logical slots. Slot i lives at
// bit i+Offset of the underlying buffer. A nil or empty buffer means that
// every slot is valid; the buffer is materialized the first time a null is
// written.
type Bitmap[P any, PT interface {
	*P
	Policy
}] struct {
	mem    memory.Allocator
	buf    *memory.Buffer
	offset int
	length int
	policy P
}

type (
	// Tracked keeps a running null count.
	Tracked = Bitmap[Tracking, *Tracking]
	// View counts nulls on demand and carries no extra state.
	View = Bitmap[NonTracking, *NonTracking]
)

// New creates a bitmap of length slots over buf starting at bit offset.
// mem is used to materialize or grow the buffer; when nil the buffer's
// own allocator or memory.DefaultAllocator is used.
func New[P any, PT interface {
	*P
	Policy
}](mem memory.Allocator, buf *memory.Buffer, offset, length int) *Bitmap[P, PT] {
	debug.Assert(offset >= 0 && length >= 0, "bitmap offset and length must be non-negative")
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	b := &Bitmap[P, PT]{mem: mem, buf: buf, offset: offset, length: length}
	PT(&b.policy).Initialize(b.Bytes(), length, offset)
	return b
}

func NewTracked(mem memory.Allocator, buf *memory.Buffer, offset, length int) *Tracked {
	return New[Tracking](mem, buf, offset, length)
}

// NewView wraps read-only bytes.
func NewView(data []byte, offset, length int) *View {
	return New[NonTracking](nil, memory.NewBufferBytes(data), offset, length)
}

func (b *Bitmap[P, PT]) pol() PT { return PT(&b.policy) }

func (b *Bitmap[P, PT]) Len() int    { return b.length }
func (b *Bitmap[P, PT]) Offset() int { return b.offset }

// Buffer returns the backing buffer, which may be nil.
func (b *Bitmap[P, PT]) Buffer() *memory.Buffer { return b.buf }

// Bytes returns the backing bits including the leading offset bits.
func (b *Bitmap[P, PT]) Bytes() []byte {
	if b.buf == nil {
		return nil
	}
	return b.buf.Bytes()
}

func (b *Bitmap[P, PT]) hasBits() bool { return b.buf != nil && b.buf.Len() > 0 }

func (b *Bitmap[P, PT]) IsSet(i int) bool {
	debug.Assert(i >= 0 && i < b.length, "bitmap index out of range")
	if !b.hasBits() {
		return true
	}
	return bitutil.BitIsSet(b.buf.Bytes(), i+b.offset)
}

// NullCount returns the number of unset slots.
func (b *Bitmap[P, PT]) NullCount() int {
	if n, ok := b.pol().NullCount(); ok {
		return n
	}
	return b.length - bitutil.CountNonNull(b.Bytes(), b.length, b.offset)
}

// Recompute recounts the nulls from the bits.
func (b *Bitmap[P, PT]) Recompute() {
	b.pol().Recompute(b.Bytes(), b.length, b.offset)
}

func (b *Bitmap[P, PT]) Set(i int, valid bool) {
	prev := b.IsSet(i)
	if prev == valid {
		return
	}
	b.materialize()
	bitutil.SetBitTo(b.buf.Bytes(), i+b.offset, valid)
	b.pol().Update(prev, valid)
}

func (b *Bitmap[P, PT]) materialize() {
	if b.hasBits() {
		return
	}
	if b.buf == nil {
		b.buf = memory.NewResizableBuffer(b.mem)
	}
	debug.Assert(b.buf.Mutable(), "cannot materialize a read-only bitmap")
	nbits := b.offset + b.length
	b.buf.Resize(bytesFor(nbits))
	bitutil.SetBitsTo(b.buf.Bytes(), 0, int64(nbits), true)
}

func bytesFor(nbits int) int { return int(bitutil.BytesForBits(int64(nbits))) }

// Resize changes the number of slots, filling new ones with valid.
func (b *Bitmap[P, PT]) Resize(n int, valid bool) {
	debug.Assert(n >= 0, "negative bitmap size")
	switch {
	case n < b.length:
		if b.hasBits() {
			removed := (b.length - n) - bitutil.CountNonNull(b.buf.Bytes(), b.length-n, b.offset+n)
			b.pol().Add(-removed)
			bitutil.SetBitsTo(b.buf.Bytes(), int64(b.offset+n), int64(b.length-n), false)
			b.buf.ResizeNoShrink(bytesFor(b.offset + n))
		}
		b.length = n
	case n > b.length:
		if !b.hasBits() && valid {
			b.length = n
			return
		}
		b.materialize()
		b.buf.ResizeNoShrink(bytesFor(b.offset + n))
		bitutil.SetBitsTo(b.buf.Bytes(), int64(b.offset+b.length), int64(n-b.length), valid)
		if !valid {
			b.pol().Add(n - b.length)
		}
		b.length = n
	}
}

// Insert inserts count slots set to valid before pos.
func (b *Bitmap[P, PT]) Insert(pos int, valid bool, count int) {
	debug.Assert(pos >= 0 && pos <= b.length, "bitmap insert position out of range")
	if count == 0 {
		return
	}
	if !b.hasBits() && valid {
		b.length += count
		return
	}

	b.materialize()
	prevLen := b.length
	b.length += count
	b.buf.ResizeNoShrink(bytesFor(b.offset + b.length))
	data := b.buf.Bytes()
	for i := prevLen - 1; i >= pos; i-- {
		bitutil.SetBitTo(data, b.offset+i+count, bitutil.BitIsSet(data, b.offset+i))
	}
	bitutil.SetBitsTo(data, int64(b.offset+pos), int64(count), valid)
	if !valid {
		b.pol().Add(count)
	}
}

// Erase removes count slots starting at pos.
func (b *Bitmap[P, PT]) Erase(pos, count int) {
	debug.Assert(pos >= 0 && count >= 0 && pos+count <= b.length, "bitmap erase range out of range")
	if count == 0 {
		return
	}
	if !b.hasBits() {
		b.length -= count
		return
	}

	data := b.buf.Bytes()
	removed := count - bitutil.CountNonNull(data, count, b.offset+pos)
	for i := pos; i+count < b.length; i++ {
		bitutil.SetBitTo(data, b.offset+i, bitutil.BitIsSet(data, b.offset+i+count))
	}
	bitutil.SetBitsTo(data, int64(b.offset+b.length-count), int64(count), false)
	b.length -= count
	b.buf.ResizeNoShrink(bytesFor(b.offset + b.length))
	b.pol().Add(-removed)
}

func (b *Bitmap[P, PT]) PushBack(valid bool) { b.Insert(b.length, valid, 1) }

func (b *Bitmap[P, PT]) PopBack() {
	debug.Assert(b.length > 0, "pop from empty bitmap")
	b.Erase(b.length-1, 1)
}

// Clear drops every slot but keeps the offset bits.
func (b *Bitmap[P, PT]) Clear() {
	if b.hasBits() {
		b.buf.ResizeNoShrink(bytesFor(b.offset))
	}
	b.length = 0
	b.pol().Clear()
}

func (b *Bitmap[P, PT]) Swap(other *Bitmap[P, PT]) { *b, *other = *other, *b }

// All iterates over (index, valid) pairs.
func (b *Bitmap[P, PT]) All() iter.Seq2[int, bool] {
	return func(yield func(int, bool) bool) {
		for i := 0; i < b.length; i++ {
			if !yield(i, b.IsSet(i)) {
				return
			}
		}
	}
}

// Iterator returns a cursor positioned before the first slot. The cursor
// reads the bits as they are now; mutating the bitmap invalidates it.
func (b *Bitmap[P, PT]) Iterator() *Iterator {
	return &Iterator{data: b.Bytes(), offset: b.offset, length: b.length, idx: -1}
}

// Iterator walks the slots of a Bitmap.
type Iterator struct {
	data   []byte
	offset int
	length int
	idx    int
}

// Next moves to the next slot and reports whether it exists.
func (it *Iterator) Next() bool {
	if it.idx < it.length {
		it.idx++
	}
	return it.idx < it.length
}

// Advance moves n slots forward, stopping at the end.
func (it *Iterator) Advance(n int) {
	debug.Assert(n >= 0, "cannot advance bitmap iterator backwards")
	it.idx = min(it.idx+n, it.length)
}

func (it *Iterator) Index() int { return it.idx }
func (it *Iterator) Len() int   { return it.length }

func (it *Iterator) Value() bool {
	debug.Assert(it.idx >= 0 && it.idx < it.length, "bitmap iterator out of range")
	if len(it.data) == 0 {
		return true
	}
	return bitutil.BitIsSet(it.data, it.offset+it.idx)
}
