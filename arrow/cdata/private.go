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
	"reflect"
	"unsafe"

	"github.com/columnar/carrow/arrow/internal/debug"
	"github.com/columnar/carrow/arrow/memory"
)

// arrayPrivate is the PrivateData of arrays created by NewArrowArray.
type arrayPrivate struct {
	mem      memory.Allocator
	ref      memory.Refcount
	buffers  []*memory.Buffer
	ptrs     []unsafe.Pointer
	children []*ArrowArray
}

// sync republishes buffer and child pointers into arr after any of them
// moved.
func (p *arrayPrivate) sync(arr *ArrowArray) {
	for i, b := range p.buffers {
		p.ptrs[i] = bufferPointer(b)
	}
	arr.NBuffers = int64(len(p.buffers))
	arr.Buffers = nil
	if len(p.ptrs) > 0 {
		arr.Buffers = &p.ptrs[0]
	}
	arr.NChildren = int64(len(p.children))
	arr.Children = nil
	if len(p.children) > 0 {
		arr.Children = &p.children[0]
	}
}

func bufferPointer(b *memory.Buffer) unsafe.Pointer {
	if b == nil || b.Len() == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(b.Buf()))
}

// schemaPrivate is the PrivateData of schemas created by NewArrowSchema.
type schemaPrivate struct {
	format   []byte
	name     []byte
	metadata []byte
	children []*ArrowSchema
}

func (p *schemaPrivate) sync(sch *ArrowSchema) {
	sch.Format = bytesPtr(p.format)
	sch.Name = bytesPtr(p.name)
	sch.Metadata = bytesPtr(p.metadata)
	sch.NChildren = int64(len(p.children))
	sch.Children = nil
	if len(p.children) > 0 {
		sch.Children = &p.children[0]
	}
}

// isLibraryArray reports whether arr was created by this package and is
// still alive, which makes its private data safe to interpret.
func isLibraryArray(arr *ArrowArray) bool {
	return arr.Release != nil && arr.PrivateData != nil &&
		reflect.ValueOf(arr.Release).Pointer() == reflect.ValueOf(releaseArray).Pointer()
}

func isLibrarySchema(sch *ArrowSchema) bool {
	return sch.Release != nil && sch.PrivateData != nil &&
		reflect.ValueOf(sch.Release).Pointer() == reflect.ValueOf(releaseSchema).Pointer()
}

func privateArray(arr *ArrowArray) *arrayPrivate {
	debug.Assert(isLibraryArray(arr), "array was not created by cdata")
	return (*arrayPrivate)(arr.PrivateData)
}

func privateSchema(sch *ArrowSchema) *schemaPrivate {
	debug.Assert(isLibrarySchema(sch), "schema was not created by cdata")
	return (*schemaPrivate)(sch.PrivateData)
}
