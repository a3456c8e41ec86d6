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

package cdata

import (
	"encoding/binary"
	"unsafe"
)

// ArrowArray describes the buffers of one column. Field order and sizes
// follow struct ArrowArray of the C data interface, but Release is a Go
// func value: C code cannot call it, and a C producer's release callback
// cannot be stored in it. Handing structures to or from C needs a cgo
// bridge that converts the callback in both directions.
type ArrowArray struct {
	Length      int64
	NullCount   int64
	Offset      int64
	NBuffers    int64
	NChildren   int64
	Buffers     *unsafe.Pointer
	Children    **ArrowArray
	Dictionary  *ArrowArray
	Release     func(*ArrowArray)
	PrivateData unsafe.Pointer
}

// ArrowSchema describes the type of one column. As with ArrowArray, the
// layout mirrors struct ArrowSchema while Release stays a Go func value
// that only Go code can invoke.
type ArrowSchema struct {
	Format      *byte
	Name        *byte
	Metadata    *byte
	Flags       int64
	NChildren   int64
	Children    **ArrowSchema
	Dictionary  *ArrowSchema
	Release     func(*ArrowSchema)
	PrivateData unsafe.Pointer
}

func (a *ArrowArray) IsReleased() bool  { return a.Release == nil }
func (s *ArrowSchema) IsReleased() bool { return s.Release == nil }

// ArrayMove transfers src into dst and marks src as released.
func ArrayMove(src, dst *ArrowArray) {
	*dst = *src
	src.Release = nil
}

// SchemaMove transfers src into dst and marks src as released.
func SchemaMove(src, dst *ArrowSchema) {
	*dst = *src
	src.Release = nil
}

// BufferPointers returns the raw buffer pointer array of arr.
func BufferPointers(arr *ArrowArray) []unsafe.Pointer {
	if arr.NBuffers == 0 || arr.Buffers == nil {
		return nil
	}
	return unsafe.Slice(arr.Buffers, arr.NBuffers)
}

func ChildArrays(arr *ArrowArray) []*ArrowArray {
	if arr.NChildren == 0 || arr.Children == nil {
		return nil
	}
	return unsafe.Slice(arr.Children, arr.NChildren)
}

func ChildSchemas(sch *ArrowSchema) []*ArrowSchema {
	if sch.NChildren == 0 || sch.Children == nil {
		return nil
	}
	return unsafe.Slice(sch.Children, sch.NChildren)
}

// cstring returns a nul-terminated copy of s.
func cstring(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}

// cMetadata returns the encoded metadata starting at p, walking the
// length prefixes to find its end.
func cMetadata(p *byte) []byte {
	if p == nil {
		return nil
	}
	read := func(off int) int {
		return int(int32(binary.NativeEndian.Uint32(unsafe.Slice((*byte)(unsafe.Add(unsafe.Pointer(p), off)), 4))))
	}
	npairs := read(0)
	off := 4
	for range 2 * npairs {
		off += 4 + read(off)
	}
	return unsafe.Slice(p, off)
}

func bytesPtr(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}
