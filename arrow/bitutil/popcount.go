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

package bitutil

import (
	"encoding/binary"
	"math/bits"
)

func popcountBytes(buf []byte) int {
	n := 0
	for _, b := range buf {
		n += bits.OnesCount8(b)
	}
	return n
}

func popcountWords(buf []byte) int {
	n := 0
	for len(buf) >= 8 {
		n += bits.OnesCount64(binary.LittleEndian.Uint64(buf))
		buf = buf[8:]
	}
	return n + popcountBytes(buf)
}

// CountNonNull counts the set bits among bitSize bits of data starting at
// bit offset. A nil or empty data buffer means no validity bitmap is
// present, in which case every element is valid and bitSize is returned.
// Bits past the end of data are not counted.
func CountNonNull(data []byte, bitSize, offset int) int {
	if len(data) == 0 {
		return bitSize
	}
	if bitSize == 0 {
		return 0
	}

	startByte, startBit := offset/8, offset%8
	if startByte >= len(data) {
		return 0
	}

	var (
		res     int
		counted int
		cur     = startByte
	)

	if startBit != 0 {
		inFirst := min(8-startBit, bitSize)
		mask := byte(((1 << inFirst) - 1) << startBit)
		res += bits.OnesCount8(data[cur] & mask)
		counted += inFirst
		cur++
	}

	if counted < bitSize && cur < len(data) {
		full := min((bitSize-counted)/8, len(data)-cur)
		if full > 0 {
			res += popcountWords(data[cur : cur+full])
			counted += full * 8
			cur += full
		}
	}

	if counted < bitSize && cur < len(data) {
		mask := byte((1 << (bitSize - counted)) - 1)
		res += bits.OnesCount8(data[cur] & mask)
	}

	return res
}

// CountSetBits counts the number of 1's in bitmap within [offset, offset+n).
// Unlike CountNonNull, an empty bitmap counts as all zeros.
func CountSetBits(bitmap []byte, offset, n int) int {
	if len(bitmap) == 0 || n == 0 {
		return 0
	}
	return CountNonNull(bitmap, n, offset)
}
