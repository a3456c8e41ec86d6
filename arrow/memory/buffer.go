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

package memory

import (
	"sync/atomic"

	"github.com/columnar/carrow/arrow/internal/debug"
)

// Buffer is a resizable block of bytes. A Buffer created with an Allocator
// owns its memory and returns it on the final Release; a Buffer wrapping
// existing bytes never frees them and cannot be resized.
type Buffer struct {
	refCount int64
	buf      []byte
	length   int
	mutable  bool
	mem      Allocator
}

// NewBufferBytes creates a fixed-size, non-owning buffer over data.
func NewBufferBytes(data []byte) *Buffer {
	return &Buffer{buf: data, length: len(data)}
}

// NewResizableBuffer creates a mutable, resizable buffer with an Allocator
// for managing memory.
func NewResizableBuffer(mem Allocator) *Buffer {
	return &Buffer{refCount: 1, mutable: true, mem: mem}
}

// CopyBuffer allocates a new resizable buffer from mem holding a copy of data.
func CopyBuffer(mem Allocator, data []byte) *Buffer {
	b := NewResizableBuffer(mem)
	b.Resize(len(data))
	copy(b.buf, data)
	return b
}

// Retain increases the reference count by 1.
func (b *Buffer) Retain() {
	if b.mem != nil {
		atomic.AddInt64(&b.refCount, 1)
	}
}

// Release decreases the reference count by 1.
// When the reference count goes to zero, the memory is freed.
func (b *Buffer) Release() {
	if b.mem != nil {
		debug.Assert(atomic.LoadInt64(&b.refCount) > 0, "too many releases")

		if atomic.AddInt64(&b.refCount, -1) == 0 {
			if b.buf != nil {
				b.mem.Free(b.buf)
			}
			b.buf, b.length = nil, 0
		}
	}
}

// Buf returns the slice of memory allocated by the Buffer, which is adjusted by calling Reserve.
func (b *Buffer) Buf() []byte { return b.buf }

// Bytes returns a slice of size Len, which is adjusted by calling Resize.
func (b *Buffer) Bytes() []byte { return b.buf[:b.length] }

// Mutable returns a bool indicating whether the buffer is mutable or not.
func (b *Buffer) Mutable() bool { return b.mutable }

// Len returns the length of the buffer.
func (b *Buffer) Len() int { return b.length }

// Cap returns the capacity of the buffer.
func (b *Buffer) Cap() int { return len(b.buf) }

// Reserve reserves the provided amount of capacity for the buffer.
func (b *Buffer) Reserve(capacity int) {
	if capacity > len(b.buf) {
		debug.Assert(b.mutable, "cannot grow an immutable buffer")
		newCap := roundUpToMultipleOf64(capacity)
		if len(b.buf) == 0 {
			b.buf = b.mem.Allocate(newCap)
		} else {
			b.buf = b.mem.Reallocate(newCap, b.buf)
		}
	}
}

// Resize resizes the buffer to the target size.
func (b *Buffer) Resize(newSize int) {
	b.resize(newSize, true)
}

// ResizeNoShrink resizes the buffer to the target size, but will not
// shrink it.
func (b *Buffer) ResizeNoShrink(newSize int) {
	b.resize(newSize, false)
}

func (b *Buffer) resize(newSize int, shrink bool) {
	debug.Assert(newSize >= 0, "negative buffer size")
	if !shrink || newSize > b.length {
		b.Reserve(newSize)
	} else {
		// Buffer is not growing, so shrink to the requested size without
		// excess space.
		newCap := roundUpToMultipleOf64(newSize)
		if len(b.buf) != newCap {
			if newSize == 0 {
				if b.buf != nil {
					b.mem.Free(b.buf)
				}
				b.buf = nil
			} else {
				b.buf = b.mem.Reallocate(newCap, b.buf)
			}
		}
	}
	b.length = newSize
}

// Insert splices data into the buffer before byte position pos, moving the
// tail forward.
func (b *Buffer) Insert(pos int, data []byte) {
	debug.Assert(pos >= 0 && pos <= b.length, "buffer insert position out of range")
	if len(data) == 0 {
		return
	}
	n := b.length
	b.ResizeNoShrink(n + len(data))
	copy(b.buf[pos+len(data):], b.buf[pos:n])
	copy(b.buf[pos:], data)
}

// Erase removes count bytes starting at pos, moving the tail backward.
func (b *Buffer) Erase(pos, count int) {
	debug.Assert(pos >= 0 && pos+count <= b.length, "buffer erase range out of range")
	if count == 0 {
		return
	}
	copy(b.buf[pos:], b.buf[pos+count:b.length])
	b.ResizeNoShrink(b.length - count)
}
