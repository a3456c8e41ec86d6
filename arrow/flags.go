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

import "strings"

// Flag is a single bit of the schema flags field.
type Flag int64

const (
	FlagDictionaryOrdered Flag = 1
	FlagNullable          Flag = 2
	FlagMapKeysSorted     Flag = 4
)

var knownFlags = [...]Flag{FlagDictionaryOrdered, FlagNullable, FlagMapKeysSorted}

func (f Flag) String() string {
	switch f {
	case FlagDictionaryOrdered:
		return "DICTIONARY_ORDERED"
	case FlagNullable:
		return "NULLABLE"
	case FlagMapKeysSorted:
		return "MAP_KEYS_SORTED"
	}
	return "UNKNOWN"
}

// Flags is the raw bit-field stored in a schema. Unknown bits are kept.
type Flags int64

func NewFlags(fl ...Flag) Flags {
	var out Flags
	for _, f := range fl {
		out |= Flags(f)
	}
	return out
}

func (f Flags) Has(flag Flag) bool { return f&Flags(flag) != 0 }

func (f Flags) With(flag Flag) Flags    { return f | Flags(flag) }
func (f Flags) Without(flag Flag) Flags { return f &^ Flags(flag) }

// Set decodes the known flags present in f.
func (f Flags) Set() []Flag {
	out := make([]Flag, 0, len(knownFlags))
	for _, k := range knownFlags {
		if f.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

func (f Flags) String() string {
	set := f.Set()
	if len(set) == 0 {
		return "NONE"
	}
	names := make([]string, len(set))
	for i, s := range set {
		names[i] = s.String()
	}
	return strings.Join(names, "|")
}
