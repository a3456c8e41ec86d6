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
)

// CheckedAllocator wraps another Allocator and keeps a running total of the
// bytes currently handed out, so tests can verify that every buffer was
// released.
type CheckedAllocator struct {
	mem Allocator
	sz  int64

	allocs int64
	frees  int64
}

func NewCheckedAllocator(mem Allocator) *CheckedAllocator {
	return &CheckedAllocator{mem: mem}
}

func (a *CheckedAllocator) CurrentAlloc() int { return int(atomic.LoadInt64(&a.sz)) }

// Allocations reports how many blocks were allocated and freed so far.
func (a *CheckedAllocator) Allocations() (allocs, frees int) {
	return int(atomic.LoadInt64(&a.allocs)), int(atomic.LoadInt64(&a.frees))
}

func (a *CheckedAllocator) Allocate(size int) []byte {
	atomic.AddInt64(&a.sz, int64(size))
	atomic.AddInt64(&a.allocs, 1)
	return a.mem.Allocate(size)
}

func (a *CheckedAllocator) Reallocate(size int, b []byte) []byte {
	atomic.AddInt64(&a.sz, int64(size-len(b)))
	return a.mem.Reallocate(size, b)
}

func (a *CheckedAllocator) Free(b []byte) {
	atomic.AddInt64(&a.sz, int64(len(b)*-1))
	atomic.AddInt64(&a.frees, 1)
	a.mem.Free(b)
}

type TestingT interface {
	Errorf(format string, args ...interface{})
	Helper()
}

func (a *CheckedAllocator) AssertSize(t TestingT, sz int) {
	if a.CurrentAlloc() != sz {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", sz, a.CurrentAlloc())
	}
}

var (
	_ Allocator = (*CheckedAllocator)(nil)
)
