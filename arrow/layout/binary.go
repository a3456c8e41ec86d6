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
	"math"
	"strings"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/internal/debug"
	"github.com/columnar/carrow/arrow/memory"
	"github.com/columnar/carrow/internal/utils"
)

// Binary is the layout of variable-size strings and byte arrays. O is the
// offset width: int32 for "u" and "z", int64 for "U" and "Z".
//
// Buffer 1 holds len+1 offsets and buffer 2 the value bytes. Every
// mutation keeps the offsets non-decreasing with the last one equal to the
// used length of the data buffer, and fails with arrow.ErrOverflow before
// touching any buffer when an offset would leave the range of O.
type Binary[O int32 | int64] struct {
	arrayBase
}

func newBinary[O int32 | int64](p *cdata.Proxy, dt arrow.DataType) (*Binary[O], error) {
	if err := checkBuffers(p, dt, 3); err != nil {
		return nil, err
	}
	if err := checkOffsets[O](p, dt, len(p.Buffer(2))); err != nil {
		return nil, err
	}
	a := &Binary[O]{}
	a.init(p, dt)
	return a, nil
}

func maxOffset[O int32 | int64]() int64 {
	var o O
	if _, ok := any(o).(int32); ok {
		return math.MaxInt32
	}
	return math.MaxInt64
}

// shiftOffset returns end+delta or an overflow error when the result does
// not fit O.
func shiftOffset[O int32 | int64](end O, delta int64) (O, error) {
	v, ok := utils.Add(int64(end), delta)
	if !ok || v > maxOffset[O]() {
		return 0, fmt.Errorf("%w: %d + %d exceeds %d", arrow.ErrOverflow, end, delta, maxOffset[O]())
	}
	return O(v), nil
}

func addOffsets[O int32 | int64](offs []O, delta O) {
	for i := range offs {
		offs[i] += delta
	}
}

// checkOffsets validates the len+1 offsets in buffer 1 of p: the first is
// non-negative and the last neither precedes it nor exceeds limit, the
// size of what they index. Empty arrays may omit the buffer.
func checkOffsets[O int32 | int64](p *cdata.Proxy, dt arrow.DataType, limit int) error {
	if p.Len() == 0 && len(p.Buffer(1)) == 0 {
		return nil
	}
	if err := checkBufferLen(p, dt, 1, (p.Offset()+p.Len()+1)*arrow.SizeOf[O]()); err != nil {
		return err
	}
	offs := windowOffsets[O](p)
	first, last := offs[0], offs[p.Len()]
	if first < 0 || last < first || int64(last) > int64(limit) {
		return fmt.Errorf("%w: %s offsets [%d, %d] exceed %d", arrow.ErrInvalid, dt, first, last, limit)
	}
	return nil
}

// windowOffsets returns the offsets of p starting at the array offset, so
// element i spans [o[i], o[i+1]).
func windowOffsets[O int32 | int64](p *cdata.Proxy) []O {
	raw := arrow.GetData[O](p.Buffer(1))
	if len(raw) == 0 {
		return nil
	}
	return raw[p.Offset():]
}

func (a *Binary[O]) offsets() []O { return windowOffsets[O](a.proxy) }

func (a *Binary[O]) bounds(i int) (int, int) {
	o := a.offsets()
	return int(o[i]), int(o[i+1])
}

func (a *Binary[O]) end() O {
	o := a.offsets()
	if o == nil {
		return 0
	}
	return o[a.Len()]
}

func (a *Binary[O]) isUTF8() bool {
	return a.dt.ID == arrow.STRING || a.dt.ID == arrow.LARGE_STRING
}

// Value returns the bytes of element i ignoring validity. The slice aliases
// the data buffer.
func (a *Binary[O]) Value(i int) []byte {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	s, e := a.bounds(i)
	return a.proxy.Buffer(2)[s:e:e]
}

func (a *Binary[O]) ValueString(i int) string { return string(a.Value(i)) }

// Offsets returns the len+1 offsets of the logical window.
func (a *Binary[O]) Offsets() []O {
	o := a.offsets()
	if o == nil {
		return nil
	}
	return o[:a.Len()+1]
}

// ValueData returns the whole data buffer.
func (a *Binary[O]) ValueData() []byte { return a.proxy.Buffer(2) }

func (a *Binary[O]) At(i int) Nullable[[]byte] {
	return Nullable[[]byte]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *Binary[O]) Get(i int) (Nullable[[]byte], error) { return checkedAt[[]byte](a, i) }

func (a *Binary[O]) Iter() *Iterator[[]byte] { return newIterator(a.Value, a.bitmap.Iterator()) }

func (a *Binary[O]) All() iter.Seq2[int, Nullable[[]byte]] { return seq(a.Iter()) }

// prepare checks that the last offset can move by delta and returns the
// owned offsets and data buffers trimmed to the range in use.
func (a *Binary[O]) prepare(delta int64) (offs, data *memory.Buffer, err error) {
	if err = a.mutable(); err != nil {
		return nil, nil, err
	}
	if _, err = shiftOffset(a.end(), delta); err != nil {
		return nil, nil, err
	}

	offs, _ = a.proxy.MutableBuffer(1)
	data, _ = a.proxy.MutableBuffer(2)
	need := (a.proxy.Offset() + a.Len() + 1) * arrow.SizeOf[O]()
	if prev := offs.Len(); prev < need {
		offs.Resize(need)
		clear(offs.Bytes()[prev:])
	}
	offs.ResizeNoShrink(need)
	data.ResizeNoShrink(int(a.end()))
	return offs, data, nil
}

func offsetsOf[O int32 | int64](buf *memory.Buffer, off int) []O {
	return arrow.GetData[O](buf.Bytes())[off:]
}

// Assign replaces the bytes of element i, leaving its validity alone.
func (a *Binary[O]) Assign(v []byte, i int) error {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	v = bytes.Clone(v)
	s, e := a.bounds(i)
	shift := len(v) - (e - s)
	offs, data, err := a.prepare(int64(shift))
	if err != nil {
		return err
	}

	n := data.Len()
	switch {
	case shift > 0:
		data.ResizeNoShrink(n + shift)
		copy(data.Bytes()[e+shift:], data.Bytes()[e:n])
	case shift < 0:
		copy(data.Bytes()[e+shift:], data.Bytes()[e:n])
		data.ResizeNoShrink(n + shift)
	}
	copy(data.Bytes()[s:], v)
	addOffsets(offsetsOf[O](offs, a.proxy.Offset())[i+1:a.Len()+1], O(shift))
	return a.commit(a.Len())
}

// InsertValue inserts count valid copies of v before pos.
func (a *Binary[O]) InsertValue(pos int, v []byte, count int) error {
	vals := make([][]byte, count)
	for i := range vals {
		vals[i] = v
	}
	return a.insertValues(pos, vals, true)
}

// InsertValues inserts vs as valid elements before pos.
func (a *Binary[O]) InsertValues(pos int, vs [][]byte) error {
	return a.insertValues(pos, vs, true)
}

func (a *Binary[O]) insertValues(pos int, vals [][]byte, valid bool) error {
	debug.Assert(pos >= 0 && pos <= a.Len(), "insert position out of range")
	if len(vals) == 0 {
		return a.mutable()
	}

	var total int64
	for _, v := range vals {
		total += int64(len(v))
	}
	joined := make([]byte, 0, total)
	for _, v := range vals {
		joined = append(joined, v...)
	}

	offs, data, err := a.prepare(total)
	if err != nil {
		return err
	}

	off, n, count := a.proxy.Offset(), a.Len(), len(vals)
	o := offsetsOf[O](offs, off)
	data.Insert(int(o[pos]), joined)

	entries := make([]O, count)
	cur := o[pos]
	for k, v := range vals {
		entries[k] = cur
		cur += O(len(v))
	}
	offs.Insert((off+pos)*arrow.SizeOf[O](), arrow.GetBytes(entries))
	addOffsets(offsetsOf[O](offs, off)[pos+count:n+count+1], O(total))

	a.bitmap.Insert(pos, valid, count)
	return a.commit(n + count)
}

// EraseValues removes count elements starting at pos.
func (a *Binary[O]) EraseValues(pos, count int) error {
	debug.Assert(pos >= 0 && count >= 0 && pos+count <= a.Len(), "erase range out of range")
	if count == 0 {
		return a.mutable()
	}

	o := a.offsets()
	s, e := int(o[pos]), int(o[pos+count])
	offs, data, err := a.prepare(int64(s - e))
	if err != nil {
		return err
	}

	off, n := a.proxy.Offset(), a.Len()
	data.Erase(s, e-s)
	offs.Erase((off+pos)*arrow.SizeOf[O](), count*arrow.SizeOf[O]())
	addOffsets(offsetsOf[O](offs, off)[pos:n-count+1], O(s-e))

	a.bitmap.Erase(pos, count)
	return a.commit(n - count)
}

// ResizeValues truncates to n elements or appends valid copies of fill.
func (a *Binary[O]) ResizeValues(n int, fill []byte) error {
	debug.Assert(n >= 0, "negative length")
	if n < a.Len() {
		return a.EraseValues(n, a.Len()-n)
	}
	return a.InsertValue(a.Len(), fill, n-a.Len())
}

// Set overwrites element i. A null stores no bytes.
func (a *Binary[O]) Set(i int, v Nullable[[]byte]) error {
	var val []byte
	if v.Valid {
		val = v.Value
	}
	if err := a.Assign(val, i); err != nil {
		return err
	}
	a.bitmap.Set(i, v.Valid)
	return a.commit(a.Len())
}

// Insert inserts count copies of v before pos.
func (a *Binary[O]) Insert(pos int, v Nullable[[]byte], count int) error {
	vals := make([][]byte, count)
	if v.Valid {
		for i := range vals {
			vals[i] = v.Value
		}
	}
	return a.insertValues(pos, vals, v.Valid)
}

func (a *Binary[O]) PushBack(v Nullable[[]byte]) error { return a.Insert(a.Len(), v, 1) }

func (a *Binary[O]) PopBack() error {
	debug.Assert(a.Len() > 0, "pop from empty array")
	return a.EraseValues(a.Len()-1, 1)
}

// Resize truncates to n elements or appends copies of fill.
func (a *Binary[O]) Resize(n int, fill Nullable[[]byte]) error {
	debug.Assert(n >= 0, "negative length")
	if n < a.Len() {
		return a.EraseValues(n, a.Len()-n)
	}
	return a.Insert(a.Len(), fill, n-a.Len())
}

func (a *Binary[O]) anyAt(i int) Nullable[any] {
	if a.isUTF8() {
		return Nullable[any]{Value: a.ValueString(i), Valid: a.IsValid(i)}
	}
	return Nullable[any]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *Binary[O]) GetOneForMarshal(i int) any {
	if a.IsNull(i) {
		return nil
	}
	if a.isUTF8() {
		return a.ValueString(i)
	}
	return a.Value(i)
}

// ValueStr returns strings as is and binary values base64 encoded.
func (a *Binary[O]) ValueStr(i int) string {
	switch {
	case a.IsNull(i):
		return nullStr
	case a.isUTF8():
		return a.ValueString(i)
	default:
		return base64.StdEncoding.EncodeToString(a.Value(i))
	}
}

func (a *Binary[O]) Accept(v Visitor) error {
	switch b := any(a).(type) {
	case *Binary[int32]:
		return v.VisitBinary(b)
	case *Binary[int64]:
		return v.VisitLargeBinary(b)
	}
	panic("unreachable")
}

func (a *Binary[O]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < a.Len(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if a.IsNull(i) {
			b.WriteString(nullStr)
			continue
		}
		fmt.Fprintf(&b, "%q", a.ValueString(i))
	}
	b.WriteByte(']')
	return b.String()
}

func (a *Binary[O]) MarshalJSON() ([]byte, error) { return marshalArray(a) }

var (
	_ Layout[[]byte] = (*Binary[int32])(nil)
	_ Layout[[]byte] = (*Binary[int64])(nil)
)
