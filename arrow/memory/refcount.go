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
	"unsafe"

	"github.com/columnar/carrow/arrow/internal/debug"
)

// Refcount releases a set of buffers once its count reaches zero and
// clears every pointer slot that was derived from them.
type Refcount struct {
	count   atomic.Int64
	Buffers []**Buffer
	Derived []*unsafe.Pointer
}

func (r *Refcount) ReferenceBuffer(b ...**Buffer) {
	r.Buffers = append(r.Buffers, b...)
}

// ReferenceDerived registers slots holding raw pointers into the
// referenced buffers. They are set to nil on the final release.
func (r *Refcount) ReferenceDerived(p ...*unsafe.Pointer) {
	r.Derived = append(r.Derived, p...)
}

func (r *Refcount) Retain() {
	r.count.Add(1)
}

func (r *Refcount) Count() int64 { return r.count.Load() }

func (r *Refcount) Release() {
	cur := r.count.Add(-1)
	if cur == 0 {
		for _, buffer := range r.Buffers {
			if *buffer != nil {
				(*buffer).Release()
				*buffer = nil
			}
		}
		r.Buffers = nil
		for _, derived := range r.Derived {
			*derived = nil
		}
		r.Derived = nil
	} else if cur < 0 {
		debug.Assert(false, "too many releases")
	}
}
