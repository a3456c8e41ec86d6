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

/*
Package layout provides typed, nullable, random-access views over arrays
held by a cdata.Proxy.

Every layout pairs the proxy's buffers with a validity bitmap: element i
is read at physical position i+Offset, and At(i) returns the value
together with its validity. MakeArray inspects the schema format and the
presence of a dictionary and returns one of the concrete layouts:

	*Null            "n"
	*Boolean         "b"
	*Primitive[T]    fixed-width numeric and temporal formats
	*Binary[int32]   "u", "z"
	*Binary[int64]   "U", "Z"
	*Dictionary[K]   any array carrying a dictionary

Layouts over arrays created by this module and owned by their proxy can be
mutated; every other layout is read-only and mutations fail with
arrow.ErrReadOnly.
*/
package layout
