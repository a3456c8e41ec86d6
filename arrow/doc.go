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
Package arrow describes the logical types of columnar data exchanged
through the Arrow C data interface.

The format strings understood by ParseFormat follow the C data interface
mini-language: a single letter for primitive types ("i" for int32, "u" for
utf8, "z" for binary), a "t" prefix for temporal types and a "+" prefix for
nested types. Schemas carry their key/value metadata in the binary,
length-prefixed encoding implemented by EncodeMetadata and DecodeMetadata.

Buffers, ownership and the layouts that read them live in the cdata,
bitmap and layout subpackages.
*/
package arrow
