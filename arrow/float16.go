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

package arrow

import (
	"math"
	"strconv"
)

// Float16 is an IEEE 754 half-precision value stored as its raw bits.
type Float16 uint16

// NewFloat16 rounds f to the nearest half-precision value.
func NewFloat16(f float32) Float16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	rawExp := (bits >> 23) & 0xff
	exp := int32(rawExp) - 127 + 15
	frac := bits & 0x7fffff

	switch {
	case bits&0x7fffffff == 0:
		return Float16(sign)
	case rawExp == 0xff:
		if frac != 0 {
			return Float16(sign | 0x7e00)
		}
		return Float16(sign | 0x7c00)
	case exp >= 0x1f:
		return Float16(sign | 0x7c00)
	case exp <= 0:
		if exp < -10 {
			return Float16(sign)
		}
		frac |= 0x800000
		shift := uint32(14 - exp)
		half := frac >> shift
		if frac>>(shift-1)&1 != 0 {
			half++
		}
		return Float16(sign | uint16(half))
	}

	h := uint16(exp)<<10 | uint16(frac>>13)
	if frac&0x1000 != 0 {
		h++
	}
	return Float16(sign | h)
}

func (f Float16) Float32() float32 {
	sign := uint32(f>>15) & 1
	exp := uint32(f>>10) & 0x1f
	frac := uint32(f) & 0x3ff

	switch {
	case exp == 0 && frac == 0:
		return math.Float32frombits(sign << 31)
	case exp == 0:
		e := uint32(127 - 15 + 1)
		for frac&0x400 == 0 {
			frac <<= 1
			e--
		}
		frac &= 0x3ff
		return math.Float32frombits(sign<<31 | e<<23 | frac<<13)
	case exp == 0x1f:
		return math.Float32frombits(sign<<31 | 0xff<<23 | frac<<13)
	}
	return math.Float32frombits(sign<<31 | (exp+127-15)<<23 | frac<<13)
}

func (f Float16) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'g', -1, 32)
}
