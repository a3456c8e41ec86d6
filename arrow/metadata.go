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
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Schema metadata keys naming an extension type and its serialized
// parameters.
const (
	ExtensionNameKey     = "ARROW:extension:name"
	ExtensionMetadataKey = "ARROW:extension:metadata"
)

// Metadata is an ordered list of key/value pairs attached to a schema.
type Metadata struct {
	keys   []string
	values []string
}

func NewMetadata(keys, values []string) Metadata {
	if len(keys) != len(values) {
		panic("arrow: len mismatch between metadata keys and values")
	}
	md := Metadata{keys: make([]string, len(keys)), values: make([]string, len(values))}
	copy(md.keys, keys)
	copy(md.values, values)
	return md
}

// MetadataFrom builds metadata from a map, sorted by key.
func MetadataFrom(kv map[string]string) Metadata {
	md := Metadata{keys: make([]string, 0, len(kv)), values: make([]string, 0, len(kv))}
	for k := range kv {
		md.keys = append(md.keys, k)
	}
	slices.Sort(md.keys)
	for _, k := range md.keys {
		md.values = append(md.values, kv[k])
	}
	return md
}

func (md Metadata) Len() int         { return len(md.keys) }
func (md Metadata) Keys() []string   { return md.keys }
func (md Metadata) Values() []string { return md.values }

// FindKey returns the index of key, or -1.
func (md Metadata) FindKey(k string) int { return slices.Index(md.keys, k) }

func (md Metadata) GetValue(k string) (string, bool) {
	i := md.FindKey(k)
	if i < 0 {
		return "", false
	}
	return md.values[i], true
}

func (md Metadata) Equal(rhs Metadata) bool {
	return slices.Equal(md.keys, rhs.keys) && slices.Equal(md.values, rhs.values)
}

func (md Metadata) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i := range md.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %q", md.keys[i], md.values[i])
	}
	b.WriteString("]")
	return b.String()
}

// EncodeMetadata serializes md as an int32 pair count followed by, for
// each key and each value, an int32 byte length and the bytes, all in
// native byte order. Empty metadata encodes to nil.
func EncodeMetadata(md Metadata) []byte {
	if md.Len() == 0 {
		return nil
	}
	size := 4
	for i := range md.keys {
		size += 8 + len(md.keys[i]) + len(md.values[i])
	}

	out := make([]byte, 0, size)
	out = binary.NativeEndian.AppendUint32(out, uint32(md.Len()))
	for i := range md.keys {
		out = binary.NativeEndian.AppendUint32(out, uint32(len(md.keys[i])))
		out = append(out, md.keys[i]...)
		out = binary.NativeEndian.AppendUint32(out, uint32(len(md.values[i])))
		out = append(out, md.values[i]...)
	}
	return out
}

// DecodeMetadata parses the encoding produced by EncodeMetadata. nil
// input decodes to empty metadata.
func DecodeMetadata(data []byte) (Metadata, error) {
	if len(data) == 0 {
		return Metadata{}, nil
	}

	readInt32 := func() (int, error) {
		if len(data) < 4 {
			return 0, fmt.Errorf("%w: truncated metadata", ErrInvalid)
		}
		v := int32(binary.NativeEndian.Uint32(data))
		data = data[4:]
		if v < 0 {
			return 0, fmt.Errorf("%w: negative length in metadata", ErrInvalid)
		}
		return int(v), nil
	}
	readStr := func() (string, error) {
		n, err := readInt32()
		if err != nil {
			return "", err
		}
		if n > len(data) {
			return "", fmt.Errorf("%w: metadata string of %d bytes exceeds buffer", ErrInvalid, n)
		}
		s := string(data[:n])
		data = data[n:]
		return s, nil
	}

	npairs, err := readInt32()
	if err != nil {
		return Metadata{}, err
	}
	if npairs > math.MaxInt32/8 {
		return Metadata{}, fmt.Errorf("%w: metadata pair count %d", ErrInvalid, npairs)
	}

	md := Metadata{keys: make([]string, 0, min(npairs, 64)), values: make([]string, 0, min(npairs, 64))}
	for range npairs {
		k, err := readStr()
		if err != nil {
			return Metadata{}, err
		}
		v, err := readStr()
		if err != nil {
			return Metadata{}, err
		}
		md.keys = append(md.keys, k)
		md.values = append(md.values, v)
	}
	return md, nil
}
