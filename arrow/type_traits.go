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
	"unsafe"

	"golang.org/x/exp/constraints"
)

// FixedWidthType is the set of Go types that can be reinterpreted directly
// from a value buffer.
type FixedWidthType interface {
	constraints.Integer | constraints.Float
}

// ValueType adds the interval structs, whose memory layout matches their
// buffer layout, to FixedWidthType.
type ValueType interface {
	FixedWidthType | DayTimeInterval | MonthDayNanoInterval
}

// GetData reinterprets a byte slice as a slice of T without copying. A
// trailing partial element is dropped.
func GetData[T ValueType](in []byte) []T {
	if len(in) == 0 {
		return nil
	}
	var z T
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(in))), len(in)/int(unsafe.Sizeof(z)))
}

// GetBytes reinterprets a slice of T as bytes without copying.
func GetBytes[T ValueType](in []T) []byte {
	if len(in) == 0 {
		return nil
	}
	var z T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(in))), len(in)*int(unsafe.Sizeof(z)))
}

// SizeOf returns the width of T in bytes.
func SizeOf[T ValueType]() int {
	var z T
	return int(unsafe.Sizeof(z))
}
