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
	"math/big"
	"slices"

	"github.com/cockroachdb/apd/v3"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/arrow/internal/debug"
	"github.com/columnar/carrow/arrow/memory"
)

// maxDecimalDigits covers decimal256.
const maxDecimalDigits = 76

// Decimal is the layout of "d:P,S[,bits]". Each value is an unscaled
// little-endian two's complement integer of ByteWidth bytes; the logical
// value is unscaled * 10^-Scale.
type Decimal struct {
	arrayBase
	width int
}

func isDecimal(id arrow.Type) bool {
	switch id {
	case arrow.DECIMAL32, arrow.DECIMAL64, arrow.DECIMAL128, arrow.DECIMAL256:
		return true
	}
	return false
}

func newDecimal(p *cdata.Proxy, dt arrow.DataType) (*Decimal, error) {
	if !isDecimal(dt.ID) || dt.ByteWidth <= 0 {
		return nil, fmt.Errorf("%w: %s is not a decimal type", arrow.ErrType, dt)
	}
	if err := checkBuffers(p, dt, 2); err != nil {
		return nil, err
	}
	if err := checkBufferLen(p, dt, 1, (p.Offset()+p.Len())*dt.ByteWidth); err != nil {
		return nil, err
	}
	a := &Decimal{width: dt.ByteWidth}
	a.init(p, dt)
	return a, nil
}

func (a *Decimal) Precision() int32 { return a.dt.Precision }
func (a *Decimal) Scale() int32     { return a.dt.Scale }

func (a *Decimal) slot(i int) []byte {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	s := (a.proxy.Offset() + i) * a.width
	return a.proxy.Buffer(1)[s : s+a.width]
}

// Unscaled returns the stored integer of element i ignoring validity.
func (a *Decimal) Unscaled(i int) *big.Int { return unscaledOf(a.slot(i)) }

// Value returns element i ignoring validity.
func (a *Decimal) Value(i int) *apd.Decimal {
	return apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(a.Unscaled(i)), -a.dt.Scale)
}

func (a *Decimal) At(i int) Nullable[*apd.Decimal] {
	return Nullable[*apd.Decimal]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *Decimal) Get(i int) (Nullable[*apd.Decimal], error) {
	return checkedAt[*apd.Decimal](a, i)
}

func (a *Decimal) Iter() *Iterator[*apd.Decimal] { return newIterator(a.Value, a.bitmap.Iterator()) }

func (a *Decimal) All() iter.Seq2[int, Nullable[*apd.Decimal]] { return seq(a.Iter()) }

// Set overwrites element i. The value is quantized to the array scale;
// values that would round, exceed the precision or the storage width are
// rejected and leave the array untouched.
func (a *Decimal) Set(i int, v Nullable[*apd.Decimal]) error {
	debug.Assert(i >= 0 && i < a.Len(), "index out of range")
	u := new(big.Int)
	if v.Valid {
		var err error
		if u, err = unscaledFor(a.dt, v.Value); err != nil {
			return err
		}
	}
	buf, err := a.proxy.MutableBuffer(1)
	if err != nil {
		return err
	}
	s := (a.proxy.Offset() + i) * a.width
	putUnscaled(buf.Bytes()[s:s+a.width], u)
	a.bitmap.Set(i, v.Valid)
	return a.commit(a.Len())
}

func (a *Decimal) anyAt(i int) Nullable[any] {
	return Nullable[any]{Value: a.Value(i), Valid: a.IsValid(i)}
}

func (a *Decimal) GetOneForMarshal(i int) any {
	if a.IsNull(i) {
		return nil
	}
	return a.Value(i).Text('f')
}

func (a *Decimal) ValueStr(i int) string {
	if a.IsNull(i) {
		return nullStr
	}
	return a.Value(i).Text('f')
}

func (a *Decimal) Accept(v Visitor) error       { return v.VisitDecimal(a) }
func (a *Decimal) String() string               { return formatArray(a) }
func (a *Decimal) MarshalJSON() ([]byte, error) { return marshalArray(a) }

// unscaledFor quantizes d to the scale of dt and returns the integer to
// store.
func unscaledFor(dt arrow.DataType, d *apd.Decimal) (*big.Int, error) {
	if d == nil || d.Form != apd.Finite {
		return nil, fmt.Errorf("%w: %v is not a finite decimal", arrow.ErrInvalid, d)
	}
	var q apd.Decimal
	ctx := apd.BaseContext.WithPrecision(maxDecimalDigits)
	cond, err := ctx.Quantize(&q, d, -dt.Scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %s at scale %d: %s", arrow.ErrInvalid, d, dt.Scale, err)
	}
	if cond.Inexact() {
		return nil, fmt.Errorf("%w: %s does not fit scale %d", arrow.ErrInvalid, d, dt.Scale)
	}
	if !q.IsZero() && q.NumDigits() > int64(dt.Precision) {
		return nil, fmt.Errorf("%w: %s exceeds precision %d", arrow.ErrInvalid, d, dt.Precision)
	}

	u := q.Coeff.MathBigInt()
	if q.Negative {
		u.Neg(u)
	}
	bits := dt.ByteWidth * 8
	if u.BitLen() >= bits && (u.Sign() >= 0 || new(big.Int).Not(u).BitLen() >= bits) {
		return nil, fmt.Errorf("%w: %s does not fit %d bits", arrow.ErrOverflow, d, bits)
	}
	return u, nil
}

func twoPow(bits int) *big.Int { return new(big.Int).Lsh(big.NewInt(1), uint(bits)) }

func putUnscaled(dst []byte, u *big.Int) {
	v := u
	if u.Sign() < 0 {
		v = new(big.Int).Add(u, twoPow(len(dst)*8))
	}
	v.FillBytes(dst)
	slices.Reverse(dst)
}

func unscaledOf(src []byte) *big.Int {
	be := slices.Clone(src)
	slices.Reverse(be)
	u := new(big.Int).SetBytes(be)
	if len(src) > 0 && src[len(src)-1]&0x80 != 0 {
		u.Sub(u, twoPow(len(src)*8))
	}
	return u
}

// NewDecimal returns an owned decimal array of type dt. Entries of vals
// that are nil or marked invalid are nulls.
func NewDecimal(mem memory.Allocator, dt arrow.DataType, vals []*apd.Decimal, valid []bool) (*Decimal, error) {
	if !isDecimal(dt.ID) || dt.ByteWidth <= 0 {
		return nil, fmt.Errorf("%w: %s is not a decimal type", arrow.ErrType, dt)
	}
	if valid == nil && slices.Contains(vals, nil) {
		valid = make([]bool, len(vals))
		for i, v := range vals {
			valid[i] = v != nil
		}
	}
	raw := make([]byte, len(vals)*dt.ByteWidth)
	for i, v := range vals {
		if valid != nil && i < len(valid) && !valid[i] {
			continue
		}
		u, err := unscaledFor(dt, v)
		if err != nil {
			return nil, fmt.Errorf("decimal %d: %w", i, err)
		}
		putUnscaled(raw[i*dt.ByteWidth:(i+1)*dt.ByteWidth], u)
	}

	bitmap, nulls, err := validityBuffer(mem, valid, len(vals))
	if err != nil {
		return nil, err
	}
	data := memory.CopyBuffer(orDefault(mem), raw)
	p := ownedProxy(mem, dt, len(vals), nulls, []*memory.Buffer{bitmap, data}, nil, nil)
	a, err := newDecimal(p, dt)
	if err != nil {
		p.Release()
		return nil, err
	}
	return a, nil
}

var _ Layout[*apd.Decimal] = (*Decimal)(nil)
