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
	"bytes"
	"encoding/base64"
	"fmt"
	"iter"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/internal/debug"
	"github.com/columnar/carrow/arrow/memory"
)

// FixedSizeBinary is the layout of "w:N": every value is exactly N bytes
// of buffer 1.
type FixedSizeBinary struct {
	arrayBase
	width int
}

func newFixedSizeBinary(p *cdata.Proxy, dt arrow.DataType) (*FixedSizeBinary, error) {
	if dt.ID != arrow.FIXED_SIZE_BINARY || dt.ByteWidth <= 0 {
		return nil, fmt.Errorf("%w: %s is not a fixed-size binary type", arrow.ErrType, dt)
	}
	if err := checkBuffers(p, dt, 2); err != nil {
		return nil, err
	}
	if err := checkBufferLen(p, dt, 1, (p.Offset()+p.Len())*dt.ByteWidth); err != nil {
		return nil, err
	}
	a := &FixedSizeBinary{width: dt.ByteWidth}
	a.init(p, dt)
	return a, nil
}

func (a *FixedSizeBinary) ByteWidth() int { return a.width }

// Value returns the bytes of element i ignoring validity. The slice aliases
// buffer 1.
func (a *FixedSizeBinary) Value(i int) []byte {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	s := (a.proxy.Offset() + i) * a.width
	return a.proxy.Buffer(1)[s : s+a.width : s+a.width]
}

// ValueData returns the value bytes of the logical window.
func (a *FixedSizeBinary) ValueData() []byte {
	s := a.proxy.Offset() * a.width
	return a.proxy.Buffer(1)[s : s+a.Len()*a.width]
}

func (a *FixedSizeBinary) At(i int) Nullable[[]byte] {
	return Nullable[[]byte]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *FixedSizeBinary) Get(i int) (Nullable[[]byte], error) { return checkedAt[[]byte](a, i) }

func (a *FixedSizeBinary) Iter() *Iterator[[]byte] { return newIterator(a.Value, a.bitmap.Iterator()) }

func (a *FixedSizeBinary) All() iter.Seq2[int, Nullable[[]byte]] { return seq(a.Iter()) }

// Set overwrites element i. A valid value must be exactly ByteWidth bytes;
// a null stores zeros.
func (a *FixedSizeBinary) Set(i int, v Nullable[[]byte]) error {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	if v.Valid && len(v.Value) != a.width {
		return fmt.Errorf("%w: %d bytes for %s", arrow.ErrInvalid, len(v.Value), a.dt)
	}
	buf, err := a.proxy.MutableBuffer(1)
	if err != nil {
		return err
	}
	s := (a.proxy.Offset() + i) * a.width
	dst := buf.Bytes()[s : s+a.width]
	if v.Valid {
		copy(dst, v.Value)
	} else {
		clear(dst)
	}
	a.bitmap.Set(i, v.Valid)
	return a.commit(a.Len())
}

func (a *FixedSizeBinary) anyAt(i int) Nullable[any] {
	return Nullable[any]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *FixedSizeBinary) GetOneForMarshal(i int) any {
	if a.IsNull(i) {
		return nil
	}
	return bytes.Clone(a.Value(i))
}

func (a *FixedSizeBinary) ValueStr(i int) string {
	if a.IsNull(i) {
		return nullStr
	}
	return base64.StdEncoding.EncodeToString(a.Value(i))
}

func (a *FixedSizeBinary) Accept(v Visitor) error       { return v.VisitFixedSizeBinary(a) }
func (a *FixedSizeBinary) String() string               { return formatArray(a) }
func (a *FixedSizeBinary) MarshalJSON() ([]byte, error) { return marshalArray(a) }

func fixedSizeBinaryProxy(mem memory.Allocator, width int, vals [][]byte, valid []bool) (*cdata.Proxy, arrow.DataType, error) {
	dt := arrow.DataType{ID: arrow.FIXED_SIZE_BINARY, ByteWidth: width}
	if width <= 0 {
		return nil, dt, fmt.Errorf("%w: byte width %d", arrow.ErrInvalid, width)
	}
	raw := make([]byte, len(vals)*width)
	for i, v := range vals {
		if valid != nil && i < len(valid) && !valid[i] {
			continue
		}
		if len(v) != width {
			return nil, dt, fmt.Errorf("%w: value %d has %d bytes for %s", arrow.ErrInvalid, i, len(v), dt)
		}
		copy(raw[i*width:], v)
	}
	bitmap, nulls, err := validityBuffer(mem, valid, len(vals))
	if err != nil {
		return nil, dt, err
	}
	data := memory.CopyBuffer(orDefault(mem), raw)
	return ownedProxy(mem, dt, len(vals), nulls, []*memory.Buffer{bitmap, data}, nil, nil), dt, nil
}

// NewFixedSizeBinary returns an owned array of width-byte values. Values of
// null entries are ignored.
func NewFixedSizeBinary(mem memory.Allocator, width int, vals [][]byte, valid []bool) (*FixedSizeBinary, error) {
	p, dt, err := fixedSizeBinaryProxy(mem, width, vals, valid)
	if err != nil {
		return nil, err
	}
	a, err := newFixedSizeBinary(p, dt)
	if err != nil {
		p.Release()
		return nil, err
	}
	return a, nil
}

var _ Layout[[]byte] = (*FixedSizeBinary)(nil)
