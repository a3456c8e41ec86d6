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

package memory_test

import (
	"fmt"

	"github.com/columnar/carrow/arrow/memory"
)

func Example_checkedAllocator() {
	pool := memory.NewCheckedAllocator(memory.NewGoAllocator())

	fmt.Println("Growing a buffer to hold 1000 int64 values...")
	buf := memory.NewResizableBuffer(pool)
	buf.Resize(1000 * 8)
	fmt.Printf("Outstanding bytes: %d\n", pool.CurrentAlloc())

	fmt.Println("\nShrinking it to 10 values...")
	buf.Resize(10 * 8)
	fmt.Printf("Outstanding bytes: %d\n", pool.CurrentAlloc())

	fmt.Println("\nReleasing buffer memory...")
	buf.Release()
	fmt.Printf("Outstanding bytes: %d\n", pool.CurrentAlloc())

	// Output:
	// Growing a buffer to hold 1000 int64 values...
	// Outstanding bytes: 8000
	//
	// Shrinking it to 10 values...
	// Outstanding bytes: 128
	//
	// Releasing buffer memory...
	// Outstanding bytes: 0
}
