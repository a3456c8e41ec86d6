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

// Package arrjson reads the Arrow integration-test JSON format into
// layouts. Every column goes through the C data structures and the layout
// dispatch, the same path foreign arrays take.
package arrjson

import (
	"fmt"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/layout"
	"github.com/columnar/carrow/internal/json"
)

type File struct {
	Schema       Schema       `json:"schema"`
	Batches      []Record     `json:"batches"`
	Dictionaries []Dictionary `json:"dictionaries,omitempty"`
}

type Schema struct {
	Fields   []Field  `json:"fields"`
	Metadata []metaKV `json:"metadata,omitempty"`
}

type Field struct {
	Name       string          `json:"name"`
	Type       json.RawMessage `json:"type"`
	Nullable   bool            `json:"nullable"`
	Children   []Field         `json:"children"`
	Dictionary *FieldDict      `json:"dictionary,omitempty"`
	Metadata   []metaKV        `json:"metadata,omitempty"`

	// populated from Type after decoding
	arrowType arrow.DataType
}

type FieldDict struct {
	ID        int64        `json:"id"`
	IndexType bitWidthJSON `json:"indexType"`
	Ordered   bool         `json:"isOrdered"`
}

type metaKV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Dictionary struct {
	ID   int64  `json:"id"`
	Data Record `json:"data"`
}

type Record struct {
	Count   int64   `json:"count"`
	Columns []Array `json:"columns"`
}

type Array struct {
	Name     string          `json:"name"`
	Count    int             `json:"count"`
	Valids   []int           `json:"VALIDITY,omitempty"`
	Data     []any           `json:"DATA,omitempty"`
	Offset   json.RawMessage `json:"OFFSET,omitempty"`
	Children []Array         `json:"children,omitempty"`
}

// the structs below are the shapes the "type" block takes for the
// supported types.

type nameJSON struct {
	Name string `json:"name"`
}

type bitWidthJSON struct {
	Name     string `json:"name"`
	Signed   bool   `json:"isSigned,omitempty"`
	BitWidth int    `json:"bitWidth,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

type floatJSON struct {
	Name      string `json:"name"`
	Precision string `json:"precision,omitempty"`
}

type byteWidthJSON struct {
	Name      string `json:"name"`
	ByteWidth int    `json:"byteWidth"`
}

type decimalJSON struct {
	Name      string `json:"name"`
	Precision int32  `json:"precision"`
	Scale     int32  `json:"scale"`
	BitWidth  int    `json:"bitWidth,omitempty"`
}

type listSizeJSON struct {
	Name     string `json:"name"`
	ListSize int32  `json:"listSize"`
}

type unitZoneJSON struct {
	Name     string `json:"name"`
	Unit     string `json:"unit,omitempty"`
	TimeZone string `json:"timezone,omitempty"`
}

var units = map[string]arrow.TimeUnit{
	"SECOND":      arrow.Second,
	"MILLISECOND": arrow.Millisecond,
	"MICROSECOND": arrow.Microsecond,
	"NANOSECOND":  arrow.Nanosecond,
}

func intType(signed bool, bitWidth int) (arrow.DataType, error) {
	ids := map[int][2]arrow.Type{
		8:  {arrow.UINT8, arrow.INT8},
		16: {arrow.UINT16, arrow.INT16},
		32: {arrow.UINT32, arrow.INT32},
		64: {arrow.UINT64, arrow.INT64},
	}
	pair, ok := ids[bitWidth]
	if !ok {
		return arrow.DataType{}, fmt.Errorf("%w: integer bit width %d", arrow.ErrInvalid, bitWidth)
	}
	if signed {
		return arrow.DataType{ID: pair[1]}, nil
	}
	return arrow.DataType{ID: pair[0]}, nil
}

func timeUnit(name string) (arrow.TimeUnit, error) {
	u, ok := units[name]
	if !ok {
		return 0, fmt.Errorf("%w: time unit %q", arrow.ErrInvalid, name)
	}
	return u, nil
}

func typeFromJSON(typ json.RawMessage) (arrow.DataType, error) {
	var tmp nameJSON
	if err := json.Unmarshal(typ, &tmp); err != nil {
		return arrow.DataType{}, err
	}

	switch tmp.Name {
	case "null":
		return arrow.DataType{ID: arrow.NULL}, nil
	case "bool":
		return arrow.DataType{ID: arrow.BOOL}, nil
	case "int":
		var t bitWidthJSON
		if err := json.Unmarshal(typ, &t); err != nil {
			return arrow.DataType{}, err
		}
		return intType(t.Signed, t.BitWidth)
	case "floatingpoint":
		var t floatJSON
		if err := json.Unmarshal(typ, &t); err != nil {
			return arrow.DataType{}, err
		}
		switch t.Precision {
		case "HALF":
			return arrow.DataType{ID: arrow.FLOAT16}, nil
		case "SINGLE":
			return arrow.DataType{ID: arrow.FLOAT32}, nil
		case "DOUBLE":
			return arrow.DataType{ID: arrow.FLOAT64}, nil
		}
		return arrow.DataType{}, fmt.Errorf("%w: float precision %q", arrow.ErrInvalid, t.Precision)
	case "binary":
		return arrow.DataType{ID: arrow.BINARY}, nil
	case "largebinary":
		return arrow.DataType{ID: arrow.LARGE_BINARY}, nil
	case "utf8":
		return arrow.DataType{ID: arrow.STRING}, nil
	case "largeutf8":
		return arrow.DataType{ID: arrow.LARGE_STRING}, nil
	case "date":
		var t unitZoneJSON
		if err := json.Unmarshal(typ, &t); err != nil {
			return arrow.DataType{}, err
		}
		switch t.Unit {
		case "DAY":
			return arrow.DataType{ID: arrow.DATE32}, nil
		case "MILLISECOND":
			return arrow.DataType{ID: arrow.DATE64}, nil
		}
		return arrow.DataType{}, fmt.Errorf("%w: date unit %q", arrow.ErrInvalid, t.Unit)
	case "time":
		var t bitWidthJSON
		if err := json.Unmarshal(typ, &t); err != nil {
			return arrow.DataType{}, err
		}
		unit, err := timeUnit(t.Unit)
		if err != nil {
			return arrow.DataType{}, err
		}
		if t.BitWidth == 32 {
			return arrow.DataType{ID: arrow.TIME32, Unit: unit}, nil
		}
		return arrow.DataType{ID: arrow.TIME64, Unit: unit}, nil
	case "timestamp":
		var t unitZoneJSON
		if err := json.Unmarshal(typ, &t); err != nil {
			return arrow.DataType{}, err
		}
		unit, err := timeUnit(t.Unit)
		if err != nil {
			return arrow.DataType{}, err
		}
		return arrow.DataType{ID: arrow.TIMESTAMP, Unit: unit, TimeZone: t.TimeZone}, nil
	case "duration":
		var t unitZoneJSON
		if err := json.Unmarshal(typ, &t); err != nil {
			return arrow.DataType{}, err
		}
		unit, err := timeUnit(t.Unit)
		if err != nil {
			return arrow.DataType{}, err
		}
		return arrow.DataType{ID: arrow.DURATION, Unit: unit}, nil
	case "fixedsizebinary":
		var t byteWidthJSON
		if err := json.Unmarshal(typ, &t); err != nil {
			return arrow.DataType{}, err
		}
		if t.ByteWidth <= 0 {
			return arrow.DataType{}, fmt.Errorf("%w: byte width %d", arrow.ErrInvalid, t.ByteWidth)
		}
		return arrow.DataType{ID: arrow.FIXED_SIZE_BINARY, ByteWidth: t.ByteWidth}, nil
	case "decimal":
		var t decimalJSON
		if err := json.Unmarshal(typ, &t); err != nil {
			return arrow.DataType{}, err
		}
		if t.BitWidth == 0 {
			t.BitWidth = 128
		}
		id, ok := decimalIDs[t.BitWidth]
		if !ok || t.Precision <= 0 {
			return arrow.DataType{}, fmt.Errorf("%w: decimal(%d, %d) of %d bits", arrow.ErrInvalid, t.Precision, t.Scale, t.BitWidth)
		}
		return arrow.DataType{ID: id, Precision: t.Precision, Scale: t.Scale, ByteWidth: t.BitWidth / 8}, nil
	case "interval":
		var t unitZoneJSON
		if err := json.Unmarshal(typ, &t); err != nil {
			return arrow.DataType{}, err
		}
		switch t.Unit {
		case "YEAR_MONTH":
			return arrow.DataType{ID: arrow.INTERVAL_MONTHS}, nil
		case "DAY_TIME":
			return arrow.DataType{ID: arrow.INTERVAL_DAY_TIME}, nil
		case "MONTH_DAY_NANO":
			return arrow.DataType{ID: arrow.INTERVAL_MONTH_DAY_NANO}, nil
		}
		return arrow.DataType{}, fmt.Errorf("%w: interval unit %q", arrow.ErrInvalid, t.Unit)
	case "list":
		return arrow.DataType{ID: arrow.LIST}, nil
	case "largelist":
		return arrow.DataType{ID: arrow.LARGE_LIST}, nil
	case "fixedsizelist":
		var t listSizeJSON
		if err := json.Unmarshal(typ, &t); err != nil {
			return arrow.DataType{}, err
		}
		if t.ListSize <= 0 {
			return arrow.DataType{}, fmt.Errorf("%w: list size %d", arrow.ErrInvalid, t.ListSize)
		}
		return arrow.DataType{ID: arrow.FIXED_SIZE_LIST, ListSize: t.ListSize}, nil
	}
	return arrow.DataType{}, fmt.Errorf("%w: json type %q", arrow.ErrNotImplemented, tmp.Name)
}

var decimalIDs = map[int]arrow.Type{
	32:  arrow.DECIMAL32,
	64:  arrow.DECIMAL64,
	128: arrow.DECIMAL128,
	256: arrow.DECIMAL256,
}

// DataType returns the decoded value type of f. For dictionary-encoded
// fields it is the type of the dictionary values.
func (f *Field) DataType() arrow.DataType { return f.arrowType }

func (f *Field) decode() error {
	dt, err := typeFromJSON(f.Type)
	if err != nil {
		return fmt.Errorf("arrjson: field %q: %w", f.Name, err)
	}
	f.arrowType = dt
	for i := range f.Children {
		if err := f.Children[i].decode(); err != nil {
			return fmt.Errorf("arrjson: field %q: %w", f.Name, err)
		}
	}
	return nil
}

func (f *Field) isUUID() bool {
	if f.arrowType.ID != arrow.FIXED_SIZE_BINARY || f.arrowType.ByteWidth != 16 {
		return false
	}
	name, ok := metadataFromJSON(f.Metadata).GetValue(arrow.ExtensionNameKey)
	return ok && name == layout.UUIDExtensionName
}

func metadataFromJSON(kvs []metaKV) arrow.Metadata {
	if len(kvs) == 0 {
		return arrow.Metadata{}
	}
	keys := make([]string, len(kvs))
	vals := make([]string, len(kvs))
	for i, kv := range kvs {
		keys[i], vals[i] = kv.Key, kv.Value
	}
	return arrow.NewMetadata(keys, vals)
}
