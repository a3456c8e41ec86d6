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

package utils

import "math"

// Add returns a + b along with whether the addition did not overflow.
// On overflow the wrapped result is returned.
func Add[T int | int32 | int64](a, b T) (T, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

// Mul returns a * b along with whether the multiplication did not overflow.
// On overflow the wrapped result is returned.
func Mul(a, b int) (int, bool) {
	c := a * b
	if a > sqrtMaxInt || a < sqrtMinInt || b > sqrtMaxInt || b < sqrtMinInt {
		if a != 0 && (c/a != b || (a == -1 && b == math.MinInt)) {
			return c, false
		}
	}
	return c, true
}

// Mul64 is Mul for int64 regardless of the platform word size.
func Mul64(a, b int64) (int64, bool) {
	const (
		sqrtMaxInt64 = 1<<31 - 1
		sqrtMinInt64 = -sqrtMaxInt64
	)

	c := a * b
	if a > sqrtMaxInt64 || a < sqrtMinInt64 || b > sqrtMaxInt64 || b < sqrtMinInt64 {
		if a != 0 && (c/a != b || (a == -1 && b == math.MinInt64)) {
			return c, false
		}
	}
	return c, true
}
