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

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/bitutil"
	"github.com/columnar/carrow/arrow/internal/debug"
	"github.com/columnar/carrow/internal/utils"
)

// expectedBuffers returns how many buffers an array of type dt carries.
func expectedBuffers(dt arrow.DataType) int {
	switch dt.ID {
	case arrow.NULL, arrow.RUN_END_ENCODED:
		return 0
	case arrow.STRUCT, arrow.FIXED_SIZE_LIST, arrow.SPARSE_UNION:
		return 1
	case arrow.STRING, arrow.LARGE_STRING, arrow.BINARY, arrow.LARGE_BINARY:
		return 3
	}
	return 2
}

// bufferSizes computes the byte length of every buffer of arr from its
// type, length and offset. Variable-size data buffers are sized from the
// last offset in use.
func bufferSizes(arr *ArrowArray, dt arrow.DataType) []int {
	ptrs := BufferPointers(arr)
	sizes := make([]int, len(ptrs))
	if len(ptrs) == 0 {
		return sizes
	}

	n := int(arr.Length + arr.Offset)
	bits := func(i int) {
		if i < len(ptrs) && ptrs[i] != nil {
			sizes[i] = int(bitutil.BytesForBits(int64(n)))
		}
	}
	fixed := func(i, width int) {
		if i >= len(ptrs) || ptrs[i] == nil {
			return
		}
		sz, ok := utils.Mul(n, width)
		if !ok {
			debug.Logf("buffer %d of %d elements of width %d overflows", i, n, width)
			return
		}
		sizes[i] = sz
	}

	if arrow.HasValidityBitmap(dt.ID) {
		bits(0)
	}

	switch dt.ID {
	case arrow.BOOL:
		bits(1)
	case arrow.STRING, arrow.BINARY:
		fixed(1, 4)
		if sizes[1] > 0 {
			sizes[1] += 4
			if len(ptrs) > 2 && ptrs[2] != nil {
				sizes[2] = int(lastOffset(ptrs[1], n, 4))
			}
		}
	case arrow.LARGE_STRING, arrow.LARGE_BINARY:
		fixed(1, 8)
		if sizes[1] > 0 {
			sizes[1] += 8
			if len(ptrs) > 2 && ptrs[2] != nil {
				sizes[2] = int(lastOffset(ptrs[1], n, 8))
			}
		}
	case arrow.LIST, arrow.MAP:
		if ptrs[1] != nil {
			sizes[1] = (n + 1) * 4
		}
	case arrow.LARGE_LIST:
		if ptrs[1] != nil {
			sizes[1] = (n + 1) * 8
		}
	case arrow.SPARSE_UNION:
		fixed(0, 1)
	case arrow.DENSE_UNION:
		fixed(0, 1)
		fixed(1, 4)
	default:
		if w := dt.BitWidth(); w >= 8 {
			fixed(1, w/8)
		}
	}
	return sizes
}

// lastOffset reads entry idx of an offsets buffer of the given width.
func lastOffset(ptr unsafe.Pointer, idx, width int) int64 {
	raw := unsafe.Slice((*byte)(unsafe.Add(ptr, idx*width)), width)
	if width == 4 {
		return int64(int32(binary.NativeEndian.Uint32(raw)))
	}
	return int64(binary.NativeEndian.Uint64(raw))
}
