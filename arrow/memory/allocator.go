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
	"math/bits"

	"github.com/klauspost/cpuid/v2"
)

// Alignment is the boundary the Go allocator aligns blocks to: the CPU's
// cache line when it is a power of two above 64 bytes, 64 otherwise. The
// C data interface asks producers for at least 8; 64 keeps SIMD loads on
// a foreign consumer aligned.
var Alignment = cacheAlignment(cpuid.CPU.CacheLine)

func cacheAlignment(line int) int {
	if line > 64 && bits.OnesCount(uint(line)) == 1 {
		return line
	}
	return 64
}

// Allocator hands out the raw blocks behind a Buffer. Each library-owned
// C array keeps one Buffer per slot and a Refcount in its private data;
// the last release of the array frees every block through the allocator
// that produced it, with the length it was returned with.
//
// Implementations must be safe for concurrent use when arrays built from
// them are released from several goroutines.
type Allocator interface {
	Allocate(size int) []byte
	Reallocate(size int, b []byte) []byte
	Free(b []byte)
}
