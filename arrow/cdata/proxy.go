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

import (
	"fmt"
	"unsafe"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/bitmap"
	"github.com/columnar/carrow/arrow/internal/debug"
	"github.com/columnar/carrow/arrow/memory"
	"golang.org/x/xerrors"
)

// Option configures a Proxy.
type Option func(*Proxy)

// WithAllocator sets the allocator used for deep copies and for buffers
// created while mutating. It defaults to memory.DefaultAllocator.
func WithAllocator(mem memory.Allocator) Option {
	return func(p *Proxy) { p.mem = mem }
}

// Proxy wraps one ArrowArray/ArrowSchema pair and knows which of the two
// it owns. Owned structures are released by Release; borrowed ones never
// are, and must outlive the proxy.
//
// Only arrays created by this package and owned by the proxy can be
// mutated. Every other mutation fails with arrow.ErrReadOnly.
type Proxy struct {
	arr *ArrowArray
	sch *ArrowSchema

	ownsArray  bool
	ownsSchema bool
	// sliced is set when arr is a private copy made by SliceView.
	sliced bool

	mem memory.Allocator

	children []*Proxy
	dict     *Proxy
}

func newProxy(arr *ArrowArray, sch *ArrowSchema, opts []Option) *Proxy {
	debug.Assert(!arr.IsReleased(), "cannot wrap a released array")
	debug.Assert(!sch.IsReleased(), "cannot wrap a released schema")
	debug.Assert(arr.NChildren == sch.NChildren, "array and schema disagree on the number of children")
	debug.Assert((arr.Dictionary == nil) == (sch.Dictionary == nil), "array and schema disagree on the dictionary")

	p := &Proxy{arr: arr, sch: sch, mem: memory.DefaultAllocator}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewProxy takes ownership of both structures. The caller's structures are
// left in the released state.
func NewProxy(arr *ArrowArray, sch *ArrowSchema, opts ...Option) *Proxy {
	p := newProxy(arr, sch, opts)
	p.arr, p.sch = new(ArrowArray), new(ArrowSchema)
	ArrayMove(arr, p.arr)
	SchemaMove(sch, p.sch)
	p.ownsArray, p.ownsSchema = true, true
	return p
}

// NewProxyArrayOnly takes ownership of arr and borrows sch.
func NewProxyArrayOnly(arr *ArrowArray, sch *ArrowSchema, opts ...Option) *Proxy {
	p := newProxy(arr, sch, opts)
	p.arr = new(ArrowArray)
	ArrayMove(arr, p.arr)
	p.ownsArray = true
	return p
}

// NewProxyView borrows both structures.
func NewProxyView(arr *ArrowArray, sch *ArrowSchema, opts ...Option) *Proxy {
	return newProxy(arr, sch, opts)
}

// Release releases the owned structures. It is safe to call more than
// once and does nothing for borrowed structures.
func (p *Proxy) Release() {
	if p.ownsArray && !p.arr.IsReleased() {
		debug.Log("releasing owned array")
		p.arr.Release(p.arr)
	}
	if p.ownsSchema && !p.sch.IsReleased() {
		p.sch.Release(p.sch)
	}
	p.children, p.dict = nil, nil
}

func (p *Proxy) Array() *ArrowArray   { return p.arr }
func (p *Proxy) Schema() *ArrowSchema { return p.sch }

func (p *Proxy) OwnsArray() bool  { return p.ownsArray }
func (p *Proxy) OwnsSchema() bool { return p.ownsSchema }

// IsView reports whether the proxy borrows its array.
func (p *Proxy) IsView() bool { return !p.ownsArray }

// IsMutable reports whether the array buffers may be modified.
func (p *Proxy) IsMutable() bool { return p.ownsArray && isLibraryArray(p.arr) }

func (p *Proxy) isSchemaMutable() bool { return p.ownsSchema && isLibrarySchema(p.sch) }

func (p *Proxy) Allocator() memory.Allocator { return p.mem }

func (p *Proxy) Format() string { return goString(p.sch.Format) }
func (p *Proxy) Name() string   { return goString(p.sch.Name) }

func (p *Proxy) Flags() arrow.Flags { return arrow.Flags(p.sch.Flags) }

func (p *Proxy) Metadata() arrow.Metadata {
	md, err := arrow.DecodeMetadata(cMetadata(p.sch.Metadata))
	if err != nil {
		debug.Logf("ignoring malformed schema metadata: %s", err)
		return arrow.Metadata{}
	}
	return md
}

// DataType decodes the schema format string.
func (p *Proxy) DataType() (arrow.DataType, error) {
	dt, err := arrow.ParseFormat(p.Format())
	if err != nil {
		return dt, xerrors.Errorf("cdata: field %q: %w", p.Name(), err)
	}
	return dt, nil
}

func (p *Proxy) Len() int    { return int(p.arr.Length) }
func (p *Proxy) Offset() int { return int(p.arr.Offset) }

// NullN returns the null count, computing it from the validity bitmap
// when the array reports it as unknown.
func (p *Proxy) NullN() int {
	if p.arr.NullCount >= 0 {
		return int(p.arr.NullCount)
	}

	var n int
	dt, err := p.DataType()
	switch {
	case err == nil && dt.ID == arrow.NULL:
		n = p.Len()
	case err == nil && !arrow.HasValidityBitmap(dt.ID), p.NumBuffers() == 0:
		n = 0
	default:
		n = bitmap.NewView(p.Buffer(0), p.Offset(), p.Len()).NullCount()
	}
	if p.ownsArray || p.sliced {
		p.arr.NullCount = int64(n)
	}
	return n
}

func (p *Proxy) NumBuffers() int { return int(p.arr.NBuffers) }

// Buffer returns a view of buffer i. Absent buffers are nil.
func (p *Proxy) Buffer(i int) []byte {
	debug.Assert(i >= 0 && i < p.NumBuffers(), "buffer index out of range")
	if isLibraryArray(p.arr) {
		return privateArray(p.arr).buffers[i].Bytes()
	}

	ptr := BufferPointers(p.arr)[i]
	if ptr == nil {
		return nil
	}
	dt, err := p.DataType()
	if err != nil {
		debug.Logf("cannot size buffer %d: %s", i, err)
		return nil
	}
	return unsafe.Slice((*byte)(ptr), bufferSizes(p.arr, dt)[i])
}

func (p *Proxy) Buffers() [][]byte {
	out := make([][]byte, p.NumBuffers())
	for i := range out {
		out[i] = p.Buffer(i)
	}
	return out
}

// MutableBuffer returns the owned buffer i for in-place modification.
// Call UpdateBuffers after resizing it.
func (p *Proxy) MutableBuffer(i int) (*memory.Buffer, error) {
	if !p.IsMutable() {
		return nil, fmt.Errorf("%w: array buffers are not owned by this proxy", arrow.ErrReadOnly)
	}
	debug.Assert(i >= 0 && i < p.NumBuffers(), "buffer index out of range")
	return privateArray(p.arr).buffers[i], nil
}

// SetBuffer replaces buffer i, releasing the previous one. The proxy takes
// over the caller's reference to buf.
func (p *Proxy) SetBuffer(i int, buf *memory.Buffer) error {
	if !p.IsMutable() {
		return fmt.Errorf("%w: array buffers are not owned by this proxy", arrow.ErrReadOnly)
	}
	debug.Assert(i >= 0 && i < p.NumBuffers(), "buffer index out of range")
	priv := privateArray(p.arr)
	if buf == nil {
		buf = memory.NewResizableBuffer(p.mem)
	}
	if old := priv.buffers[i]; old != buf {
		old.Release()
		priv.buffers[i] = buf
	}
	priv.sync(p.arr)
	return nil
}

// UpdateBuffers republishes buffer pointers after owned buffers were
// resized in place.
func (p *Proxy) UpdateBuffers() {
	if isLibraryArray(p.arr) {
		privateArray(p.arr).sync(p.arr)
	}
}

func (p *Proxy) readOnly(what string) error {
	return fmt.Errorf("%w: cannot set %s", arrow.ErrReadOnly, what)
}

func (p *Proxy) SetLength(n int) error {
	if !p.IsMutable() {
		return p.readOnly("length")
	}
	debug.Assert(n >= 0, "negative length")
	p.arr.Length = int64(n)
	return nil
}

// SetNullCount stores n; -1 means unknown.
func (p *Proxy) SetNullCount(n int) error {
	if !p.IsMutable() {
		return p.readOnly("null count")
	}
	p.arr.NullCount = int64(n)
	return nil
}

func (p *Proxy) SetOffset(n int) error {
	if !p.IsMutable() {
		return p.readOnly("offset")
	}
	debug.Assert(n >= 0, "negative offset")
	p.arr.Offset = int64(n)
	return nil
}

func (p *Proxy) SetName(name string) error {
	if !p.isSchemaMutable() {
		return p.readOnly("name")
	}
	priv := privateSchema(p.sch)
	priv.name = nil
	if name != "" {
		priv.name = cstring(name)
	}
	priv.sync(p.sch)
	return nil
}

func (p *Proxy) SetFlags(f arrow.Flags) error {
	if !p.isSchemaMutable() {
		return p.readOnly("flags")
	}
	p.sch.Flags = int64(f)
	return nil
}

func (p *Proxy) SetMetadata(md arrow.Metadata) error {
	if !p.isSchemaMutable() {
		return p.readOnly("metadata")
	}
	priv := privateSchema(p.sch)
	priv.metadata = arrow.EncodeMetadata(md)
	priv.sync(p.sch)
	return nil
}

func (p *Proxy) NumChildren() int { return int(p.arr.NChildren) }

// Child returns a borrowed proxy over child i.
func (p *Proxy) Child(i int) *Proxy {
	debug.Assert(i >= 0 && i < p.NumChildren(), "child index out of range")
	if p.children == nil {
		arrs, schs := ChildArrays(p.arr), ChildSchemas(p.sch)
		p.children = make([]*Proxy, len(arrs))
		for j := range arrs {
			p.children[j] = NewProxyView(arrs[j], schs[j], WithAllocator(p.mem))
		}
	}
	return p.children[i]
}

func (p *Proxy) Children() []*Proxy {
	out := make([]*Proxy, p.NumChildren())
	for i := range out {
		out[i] = p.Child(i)
	}
	return out
}

// Dictionary returns a borrowed proxy over the dictionary, or nil.
func (p *Proxy) Dictionary() *Proxy {
	if p.arr.Dictionary == nil {
		return nil
	}
	if p.dict == nil {
		debug.Assert(p.sch.Dictionary != nil, "array has a dictionary but schema does not")
		p.dict = NewProxyView(p.arr.Dictionary, p.sch.Dictionary, WithAllocator(p.mem))
	}
	return p.dict
}

// AddChild moves arr and sch into the owned structures as the last child.
func (p *Proxy) AddChild(arr *ArrowArray, sch *ArrowSchema) error {
	if !p.IsMutable() || !p.isSchemaMutable() {
		return p.readOnly("children")
	}
	debug.Assert(!arr.IsReleased() && !sch.IsReleased(), "cannot add a released child")

	apriv, spriv := privateArray(p.arr), privateSchema(p.sch)
	ca, cs := new(ArrowArray), new(ArrowSchema)
	ArrayMove(arr, ca)
	SchemaMove(sch, cs)
	apriv.children = append(apriv.children, ca)
	spriv.children = append(spriv.children, cs)
	apriv.sync(p.arr)
	spriv.sync(p.sch)
	p.children = nil
	return nil
}

// SetDictionary moves arr and sch in as the dictionary, releasing any
// previous one.
func (p *Proxy) SetDictionary(arr *ArrowArray, sch *ArrowSchema) error {
	if !p.IsMutable() || !p.isSchemaMutable() {
		return p.readOnly("dictionary")
	}
	debug.Assert(!arr.IsReleased() && !sch.IsReleased(), "cannot attach a released dictionary")

	if d := p.arr.Dictionary; d != nil && !d.IsReleased() {
		d.Release(d)
	}
	if d := p.sch.Dictionary; d != nil && !d.IsReleased() {
		d.Release(d)
	}
	p.arr.Dictionary, p.sch.Dictionary = new(ArrowArray), new(ArrowSchema)
	ArrayMove(arr, p.arr.Dictionary)
	SchemaMove(sch, p.sch.Dictionary)
	p.dict = nil
	return nil
}

// Extract hands both owned structures back to the caller. The proxy is
// left empty.
func (p *Proxy) Extract() (*ArrowArray, *ArrowSchema, error) {
	if !p.ownsArray || !p.ownsSchema {
		return nil, nil, fmt.Errorf("%w: cannot extract borrowed structures", arrow.ErrReadOnly)
	}
	arr, sch := new(ArrowArray), new(ArrowSchema)
	ArrayMove(p.arr, arr)
	SchemaMove(p.sch, sch)
	p.children, p.dict = nil, nil
	return arr, sch, nil
}

// SliceView returns a borrowed proxy over [start, end) sharing this
// proxy's buffers. No data is copied.
func (p *Proxy) SliceView(start, end int) *Proxy {
	debug.Assert(start >= 0 && start <= end && end <= p.Len(), "slice bounds out of range")

	view := *p.arr
	view.Offset += int64(start)
	view.Length = int64(end - start)
	if p.arr.NullCount != 0 {
		view.NullCount = -1
	}
	view.Release = releaseView

	return &Proxy{arr: &view, sch: p.sch, sliced: true, mem: p.mem}
}

// Slice returns an owned deep copy restricted to [start, end).
func (p *Proxy) Slice(start, end int) (*Proxy, error) {
	debug.Assert(start >= 0 && start <= end && end <= p.Len(), "slice bounds out of range")

	out, err := p.Clone()
	if err != nil {
		return nil, err
	}
	out.arr.Offset += int64(start)
	out.arr.Length = int64(end - start)
	if out.arr.NullCount != 0 {
		out.arr.NullCount = -1
	}
	return out, nil
}

// Clone deep copies both structures, including buffers, children and
// dictionary, into independently owned ones.
func (p *Proxy) Clone() (*Proxy, error) {
	arr, sch, err := p.deepCopy()
	if err != nil {
		return nil, err
	}
	return NewProxy(arr, sch, WithAllocator(p.mem)), nil
}

func (p *Proxy) deepCopy() (*ArrowArray, *ArrowSchema, error) {
	if !isLibraryArray(p.arr) {
		// sizes of foreign buffers come from the type
		if _, err := p.DataType(); err != nil && p.NumBuffers() > 0 {
			return nil, nil, err
		}
	}

	bufs := make([]*memory.Buffer, p.NumBuffers())
	for i := range bufs {
		bufs[i] = memory.CopyBuffer(p.mem, p.Buffer(i))
	}

	childArrs := make([]*ArrowArray, p.NumChildren())
	childSchs := make([]*ArrowSchema, p.NumChildren())
	for i := range childArrs {
		a, s, err := p.Child(i).deepCopy()
		if err != nil {
			releaseAll(bufs, childArrs[:i], childSchs[:i])
			return nil, nil, err
		}
		childArrs[i], childSchs[i] = a, s
	}

	var dictArr *ArrowArray
	var dictSch *ArrowSchema
	if d := p.Dictionary(); d != nil {
		var err error
		if dictArr, dictSch, err = d.deepCopy(); err != nil {
			releaseAll(bufs, childArrs, childSchs)
			return nil, nil, err
		}
	}

	debug.Logf("deep copied array of length %d with %d buffers", p.Len(), len(bufs))
	arr := NewArrowArray(p.mem, p.arr.Length, p.arr.NullCount, p.arr.Offset, bufs, childArrs, dictArr)
	sch := NewArrowSchema(p.Format(), p.Name(), p.Metadata(), p.Flags(), childSchs, dictSch)
	return arr, sch, nil
}

func releaseAll(bufs []*memory.Buffer, arrs []*ArrowArray, schs []*ArrowSchema) {
	for _, b := range bufs {
		b.Release()
	}
	for _, a := range arrs {
		a.Release(a)
	}
	for _, s := range schs {
		s.Release(s)
	}
}
