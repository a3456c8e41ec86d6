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

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/cdata"
)

func wrap[L Array](l L, err error) (Array, error) {
	if err != nil {
		return nil, err
	}
	return l, nil
}

// MakeArray builds the layout matching the type of p. An array carrying a
// dictionary is dictionary encoded whatever its format, which then names
// the key type. The returned layout shares p; releasing it releases p.
func MakeArray(p *cdata.Proxy) (Array, error) {
	dt, err := p.DataType()
	if err != nil {
		return nil, err
	}
	if p.Dictionary() != nil {
		return makeDictionary(p, dt)
	}

	switch dt.ID {
	case arrow.NULL:
		return newNull(p), nil
	case arrow.BOOL:
		return wrap(newBoolean(p, dt))
	case arrow.INT8:
		return wrap(newPrimitive[int8](p, dt))
	case arrow.UINT8:
		return wrap(newPrimitive[uint8](p, dt))
	case arrow.INT16:
		return wrap(newPrimitive[int16](p, dt))
	case arrow.UINT16:
		return wrap(newPrimitive[uint16](p, dt))
	case arrow.INT32:
		return wrap(newPrimitive[int32](p, dt))
	case arrow.UINT32:
		return wrap(newPrimitive[uint32](p, dt))
	case arrow.INT64:
		return wrap(newPrimitive[int64](p, dt))
	case arrow.UINT64:
		return wrap(newPrimitive[uint64](p, dt))
	case arrow.FLOAT16:
		return wrap(newPrimitive[arrow.Float16](p, dt))
	case arrow.FLOAT32:
		return wrap(newPrimitive[float32](p, dt))
	case arrow.FLOAT64:
		return wrap(newPrimitive[float64](p, dt))
	case arrow.DATE32:
		return wrap(newPrimitive[arrow.Date32](p, dt))
	case arrow.DATE64:
		return wrap(newPrimitive[arrow.Date64](p, dt))
	case arrow.TIME32:
		return wrap(newPrimitive[arrow.Time32](p, dt))
	case arrow.TIME64:
		return wrap(newPrimitive[arrow.Time64](p, dt))
	case arrow.TIMESTAMP:
		return wrap(newPrimitive[arrow.Timestamp](p, dt))
	case arrow.DURATION:
		return wrap(newPrimitive[arrow.Duration](p, dt))
	case arrow.INTERVAL_MONTHS:
		return wrap(newPrimitive[arrow.MonthInterval](p, dt))
	case arrow.INTERVAL_DAY_TIME:
		return wrap(newInterval[arrow.DayTimeInterval](p, dt))
	case arrow.INTERVAL_MONTH_DAY_NANO:
		return wrap(newInterval[arrow.MonthDayNanoInterval](p, dt))
	case arrow.FIXED_SIZE_BINARY:
		if isUUID(p, dt) {
			return wrap(newUUID(p, dt))
		}
		return wrap(newFixedSizeBinary(p, dt))
	case arrow.DECIMAL32, arrow.DECIMAL64, arrow.DECIMAL128, arrow.DECIMAL256:
		return wrap(newDecimal(p, dt))
	case arrow.STRING, arrow.BINARY:
		return wrap(newBinary[int32](p, dt))
	case arrow.LARGE_STRING, arrow.LARGE_BINARY:
		return wrap(newBinary[int64](p, dt))
	case arrow.LIST:
		return wrap(newList[int32](p, dt))
	case arrow.LARGE_LIST:
		return wrap(newList[int64](p, dt))
	case arrow.FIXED_SIZE_LIST:
		return wrap(newFixedSizeList(p, dt))
	}
	return nil, fmt.Errorf("%w: no layout for %s", arrow.ErrNotImplemented, dt)
}

func makeDictionary(p *cdata.Proxy, keys arrow.DataType) (Array, error) {
	switch keys.ID {
	case arrow.INT8:
		return wrap(newDictionary[int8](p))
	case arrow.UINT8:
		return wrap(newDictionary[uint8](p))
	case arrow.INT16:
		return wrap(newDictionary[int16](p))
	case arrow.UINT16:
		return wrap(newDictionary[uint16](p))
	case arrow.INT32:
		return wrap(newDictionary[int32](p))
	case arrow.UINT32:
		return wrap(newDictionary[uint32](p))
	case arrow.INT64:
		return wrap(newDictionary[int64](p))
	case arrow.UINT64:
		return wrap(newDictionary[uint64](p))
	}
	return nil, fmt.Errorf("%w: dictionary keys must be integers, got %s", arrow.ErrType, keys)
}

// Clone deep copies a into an independently owned layout.
func Clone(a Array) (Array, error) {
	p, err := a.Proxy().Clone()
	if err != nil {
		return nil, err
	}
	out, err := MakeArray(p)
	if err != nil {
		p.Release()
		return nil, err
	}
	return out, nil
}

// NewSlice returns a read-only layout over elements [i, j) of a sharing its
// buffers. It must not outlive a.
func NewSlice(a Array, i, j int) (Array, error) {
	return MakeArray(a.Proxy().SliceView(i, j))
}
