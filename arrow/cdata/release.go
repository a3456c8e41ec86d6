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

import "github.com/columnar/carrow/arrow/internal/debug"

func releaseArray(arr *ArrowArray) {
	if arr.IsReleased() {
		return
	}
	priv := (*arrayPrivate)(arr.PrivateData)

	if arr.Dictionary != nil && !arr.Dictionary.IsReleased() {
		arr.Dictionary.Release(arr.Dictionary)
	}
	for _, child := range priv.children {
		if !child.IsReleased() {
			child.Release(child)
		}
	}
	priv.ref.Release()

	debug.Logf("released array of length %d with %d buffers", arr.Length, len(priv.buffers))
	arr.Release = nil
	arr.PrivateData = nil
	arr.Buffers = nil
	arr.Children = nil
}

func releaseSchema(sch *ArrowSchema) {
	if sch.IsReleased() {
		return
	}
	priv := (*schemaPrivate)(sch.PrivateData)

	if sch.Dictionary != nil && !sch.Dictionary.IsReleased() {
		sch.Dictionary.Release(sch.Dictionary)
	}
	for _, child := range priv.children {
		if !child.IsReleased() {
			child.Release(child)
		}
	}

	sch.Release = nil
	sch.PrivateData = nil
	sch.Format, sch.Name, sch.Metadata = nil, nil, nil
	sch.Children = nil
}

// releaseView marks structures that share another owner's buffers. It
// never frees anything.
func releaseView(*ArrowArray) {}
