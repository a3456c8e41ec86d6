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

// Package cdata holds the Arrow C data interface structures and the Proxy
// that owns or borrows them.
//
// ArrowArray and ArrowSchema keep the field order and word sizes of the C
// ABI. Their release callbacks are Go functions, so exchanging them with C
// code requires a cgo bridge that translates the callback.
//
// A structure whose Release field is nil has been released. A non-nil
// Release must be called exactly once, by whichever owner currently holds
// the structure. Releasing a structure created by this package releases its
// dictionary first, then each child in order, then its own buffers.
package cdata
