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
	"unsafe"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/memory"
)

// NewArrowArray creates a library-owned array. It takes over the caller's
// reference to each buffer; nil entries become empty buffers. children and
// dict are moved into the new array and left released.
func NewArrowArray(mem memory.Allocator, length, nullCount, offset int64, buffers []*memory.Buffer, children []*ArrowArray, dict *ArrowArray) *ArrowArray {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	priv := &arrayPrivate{
		mem:      mem,
		buffers:  make([]*memory.Buffer, len(buffers)),
		ptrs:     make([]unsafe.Pointer, len(buffers)),
		children: make([]*ArrowArray, len(children)),
	}
	priv.ref.Retain()
	for i, b := range buffers {
		if b == nil {
			b = memory.NewResizableBuffer(mem)
		}
		priv.buffers[i] = b
		priv.ref.ReferenceBuffer(&priv.buffers[i])
		priv.ref.ReferenceDerived(&priv.ptrs[i])
	}
	for i, c := range children {
		priv.children[i] = new(ArrowArray)
		ArrayMove(c, priv.children[i])
	}

	arr := &ArrowArray{
		Length:      length,
		NullCount:   nullCount,
		Offset:      offset,
		Release:     releaseArray,
		PrivateData: unsafe.Pointer(priv),
	}
	if dict != nil {
		arr.Dictionary = new(ArrowArray)
		ArrayMove(dict, arr.Dictionary)
	}
	priv.sync(arr)
	return arr
}

// NewArrowSchema creates a library-owned schema. children and dict are
// moved into it and left released. An empty name is stored as a null
// pointer.
func NewArrowSchema(format, name string, md arrow.Metadata, flags arrow.Flags, children []*ArrowSchema, dict *ArrowSchema) *ArrowSchema {
	priv := &schemaPrivate{
		format:   cstring(format),
		metadata: arrow.EncodeMetadata(md),
		children: make([]*ArrowSchema, len(children)),
	}
	if name != "" {
		priv.name = cstring(name)
	}
	for i, c := range children {
		priv.children[i] = new(ArrowSchema)
		SchemaMove(c, priv.children[i])
	}

	sch := &ArrowSchema{
		Flags:       int64(flags),
		Release:     releaseSchema,
		PrivateData: unsafe.Pointer(priv),
	}
	if dict != nil {
		sch.Dictionary = new(ArrowSchema)
		SchemaMove(dict, sch.Dictionary)
	}
	priv.sync(sch)
	return sch
}
