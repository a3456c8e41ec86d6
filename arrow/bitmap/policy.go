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

package bitmap

import "github.com/columnar/carrow/arrow/bitutil"

// Policy decides how a Bitmap keeps track of its null count.
type Policy interface {
	// Initialize computes the null count of bitSize bits starting at
	// offset in data. nil or empty data means every bit is valid.
	Initialize(data []byte, bitSize, offset int)
	// Recompute discards any running count and counts again.
	Recompute(data []byte, bitSize, offset int)
	// Update records that a single slot changed validity from prev to cur.
	Update(prev, cur bool)
	// Add adjusts the count by delta nulls.
	Add(delta int)
	// NullCount reports the tracked count and whether one is tracked at all.
	NullCount() (int, bool)
	SetNullCount(n int)
	Clear()
}

// Tracking maintains the null count incrementally so that querying it is
// constant time.
type Tracking struct {
	count int
}

func (t *Tracking) Initialize(data []byte, bitSize, offset int) {
	t.count = bitSize - bitutil.CountNonNull(data, bitSize, offset)
}

func (t *Tracking) Recompute(data []byte, bitSize, offset int) {
	t.Initialize(data, bitSize, offset)
}

func (t *Tracking) Update(prev, cur bool) {
	switch {
	case prev && !cur:
		t.count++
	case !prev && cur:
		t.count--
	}
}

func (t *Tracking) Add(delta int)          { t.count += delta }
func (t *Tracking) NullCount() (int, bool) { return t.count, true }
func (t *Tracking) SetNullCount(n int)     { t.count = n }
func (t *Tracking) Clear()                 { t.count = 0 }
func (t *Tracking) Swap(other *Tracking)   { t.count, other.count = other.count, t.count }

// NonTracking keeps no state at all. Bitmaps using it count nulls on
// demand.
type NonTracking struct{}

func (NonTracking) Initialize([]byte, int, int) {}
func (NonTracking) Recompute([]byte, int, int)  {}
func (NonTracking) Update(bool, bool)           {}
func (NonTracking) Add(int)                     {}
func (NonTracking) NullCount() (int, bool)      { return 0, false }
func (NonTracking) SetNullCount(int)            {}
func (NonTracking) Clear()                      {}
func (NonTracking) Swap(*NonTracking)           {}

var (
	_ Policy = (*Tracking)(nil)
	_ Policy = (*NonTracking)(nil)
)
