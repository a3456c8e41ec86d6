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

package layout

import (
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/memory"
)

// UUIDExtensionName marks a fixed-size binary(16) column holding RFC 4122
// uuids.
const UUIDExtensionName = "arrow.uuid"

// UUID is the arrow.uuid extension over FixedSizeBinary storage. It visits
// as its storage.
type UUID struct {
	FixedSizeBinary
}

func isUUID(p *cdata.Proxy, dt arrow.DataType) bool {
	if dt.ID != arrow.FIXED_SIZE_BINARY || dt.ByteWidth != 16 {
		return false
	}
	name, ok := p.Metadata().GetValue(arrow.ExtensionNameKey)
	return ok && name == UUIDExtensionName
}

func newUUID(p *cdata.Proxy, dt arrow.DataType) (*UUID, error) {
	storage, err := newFixedSizeBinary(p, dt)
	if err != nil {
		return nil, err
	}
	return &UUID{FixedSizeBinary: *storage}, nil
}

// Storage returns the underlying fixed-size binary layout.
func (a *UUID) Storage() *FixedSizeBinary { return &a.FixedSizeBinary }

// Value returns element i ignoring validity.
func (a *UUID) Value(i int) uuid.UUID {
	return uuid.UUID(a.FixedSizeBinary.Value(i))
}

func (a *UUID) At(i int) Nullable[uuid.UUID] {
	return Nullable[uuid.UUID]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *UUID) Get(i int) (Nullable[uuid.UUID], error) { return checkedAt[uuid.UUID](a, i) }

func (a *UUID) Iter() *Iterator[uuid.UUID] { return newIterator(a.Value, a.bitmap.Iterator()) }

func (a *UUID) All() iter.Seq2[int, Nullable[uuid.UUID]] { return seq(a.Iter()) }

func (a *UUID) Set(i int, v Nullable[uuid.UUID]) error {
	return a.FixedSizeBinary.Set(i, Nullable[[]byte]{Value: v.Value[:], Valid: v.Valid})
}

func (a *UUID) anyAt(i int) Nullable[any] {
	return Nullable[any]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *UUID) GetOneForMarshal(i int) any {
	if a.IsNull(i) {
		return nil
	}
	return a.Value(i).String()
}

func (a *UUID) ValueStr(i int) string {
	if a.IsNull(i) {
		return nullStr
	}
	return a.Value(i).String()
}

func (a *UUID) String() string               { return formatArray(a) }
func (a *UUID) MarshalJSON() ([]byte, error) { return marshalArray(a) }

// ParseUUIDs parses canonical uuid strings for NewUUID.
func ParseUUIDs(strs []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(strs))
	for i, s := range strs {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", arrow.ErrInvalid, err)
		}
		out[i] = u
	}
	return out, nil
}

// NewUUID returns an owned arrow.uuid array.
func NewUUID(mem memory.Allocator, vals []uuid.UUID, valid []bool) (*UUID, error) {
	raw := make([][]byte, len(vals))
	for i := range vals {
		raw[i] = vals[i][:]
	}
	p, dt, err := fixedSizeBinaryProxy(mem, 16, raw, valid)
	if err != nil {
		return nil, err
	}
	err = p.SetMetadata(arrow.NewMetadata([]string{arrow.ExtensionNameKey}, []string{UUIDExtensionName}))
	if err != nil {
		p.Release()
		return nil, err
	}
	a, err := newUUID(p, dt)
	if err != nil {
		p.Release()
		return nil, err
	}
	return a, nil
}

var _ Layout[uuid.UUID] = (*UUID)(nil)
