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
	"fmt"
	"strconv"
	"strings"
)

var formatToSimpleType = map[string]DataType{
	"n":   {ID: NULL},
	"b":   {ID: BOOL},
	"c":   {ID: INT8},
	"C":   {ID: UINT8},
	"s":   {ID: INT16},
	"S":   {ID: UINT16},
	"i":   {ID: INT32},
	"I":   {ID: UINT32},
	"l":   {ID: INT64},
	"L":   {ID: UINT64},
	"e":   {ID: FLOAT16},
	"f":   {ID: FLOAT32},
	"g":   {ID: FLOAT64},
	"z":   {ID: BINARY},
	"Z":   {ID: LARGE_BINARY},
	"u":   {ID: STRING},
	"U":   {ID: LARGE_STRING},
	"tdD": {ID: DATE32},
	"tdm": {ID: DATE64},
	"tts": {ID: TIME32, Unit: Second},
	"ttm": {ID: TIME32, Unit: Millisecond},
	"ttu": {ID: TIME64, Unit: Microsecond},
	"ttn": {ID: TIME64, Unit: Nanosecond},
	"tDs": {ID: DURATION, Unit: Second},
	"tDm": {ID: DURATION, Unit: Millisecond},
	"tDu": {ID: DURATION, Unit: Microsecond},
	"tDn": {ID: DURATION, Unit: Nanosecond},
	"tiM": {ID: INTERVAL_MONTHS},
	"tiD": {ID: INTERVAL_DAY_TIME},
	"tin": {ID: INTERVAL_MONTH_DAY_NANO},
	"+l":  {ID: LIST},
	"+L":  {ID: LARGE_LIST},
	"+s":  {ID: STRUCT},
	"+m":  {ID: MAP},
	"+r":  {ID: RUN_END_ENCODED},
}

var unitChars = map[byte]TimeUnit{'s': Second, 'm': Millisecond, 'u': Microsecond, 'n': Nanosecond}

var decimalTypes = map[int]Type{32: DECIMAL32, 64: DECIMAL64, 128: DECIMAL128, 256: DECIMAL256}

func invalidFormat(f string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: malformed format string %q: %s", ErrInvalid, f, err)
	}
	return fmt.Errorf("%w: malformed format string %q", ErrInvalid, f)
}

// ParseFormat decodes a C data interface format string. Unknown formats
// fail with ErrNotImplemented, malformed parameters with ErrInvalid.
func ParseFormat(f string) (DataType, error) {
	if dt, ok := formatToSimpleType[f]; ok {
		return dt, nil
	}

	switch {
	case strings.HasPrefix(f, "w:"):
		n, err := strconv.Atoi(f[2:])
		if err != nil || n <= 0 {
			return DataType{}, invalidFormat(f, err)
		}
		return DataType{ID: FIXED_SIZE_BINARY, ByteWidth: n}, nil
	case strings.HasPrefix(f, "d:"):
		return parseDecimal(f)
	case strings.HasPrefix(f, "ts") && len(f) >= 4 && f[3] == ':':
		unit, ok := unitChars[f[2]]
		if !ok {
			return DataType{}, invalidFormat(f, nil)
		}
		return DataType{ID: TIMESTAMP, Unit: unit, TimeZone: f[4:]}, nil
	case strings.HasPrefix(f, "+w:"):
		n, err := strconv.ParseInt(f[3:], 10, 32)
		if err != nil || n < 0 {
			return DataType{}, invalidFormat(f, err)
		}
		return DataType{ID: FIXED_SIZE_LIST, ListSize: int32(n)}, nil
	case strings.HasPrefix(f, "+us:"), strings.HasPrefix(f, "+ud:"):
		id := SPARSE_UNION
		if f[2] == 'd' {
			id = DENSE_UNION
		}
		codes, err := parseTypeCodes(f[4:])
		if err != nil {
			return DataType{}, invalidFormat(f, err)
		}
		return DataType{ID: id, TypeCodes: codes}, nil
	}

	return DataType{}, fmt.Errorf("%w: unsupported format string %q", ErrNotImplemented, f)
}

func parseDecimal(f string) (DataType, error) {
	parts := strings.Split(f[2:], ",")
	if len(parts) < 2 || len(parts) > 3 {
		return DataType{}, invalidFormat(f, nil)
	}
	prec, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return DataType{}, invalidFormat(f, err)
	}
	scale, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return DataType{}, invalidFormat(f, err)
	}
	bits := 128
	if len(parts) == 3 {
		if bits, err = strconv.Atoi(parts[2]); err != nil {
			return DataType{}, invalidFormat(f, err)
		}
	}
	id, ok := decimalTypes[bits]
	if !ok {
		return DataType{}, fmt.Errorf("%w: decimal bit width %d", ErrNotImplemented, bits)
	}
	return DataType{ID: id, Precision: int32(prec), Scale: int32(scale), ByteWidth: bits / 8}, nil
}

func parseTypeCodes(s string) ([]int8, error) {
	if s == "" {
		return []int8{}, nil
	}
	fields := strings.Split(s, ",")
	codes := make([]int8, len(fields))
	for i, c := range fields {
		v, err := strconv.ParseInt(c, 10, 8)
		if err != nil {
			return nil, err
		}
		codes[i] = int8(v)
	}
	return codes, nil
}

// Format encodes dt back into its format string. DICTIONARY has no format
// of its own; a dictionary-encoded array carries the format of its keys.
func (dt DataType) Format() string {
	for f, simple := range formatToSimpleType {
		if simple.ID == dt.ID && (simple.Unit == dt.Unit || !hasUnit(dt.ID)) {
			return f
		}
	}

	switch dt.ID {
	case FIXED_SIZE_BINARY:
		return "w:" + strconv.Itoa(dt.ByteWidth)
	case DECIMAL32, DECIMAL64, DECIMAL128, DECIMAL256:
		if dt.ID == DECIMAL128 {
			return fmt.Sprintf("d:%d,%d", dt.Precision, dt.Scale)
		}
		return fmt.Sprintf("d:%d,%d,%d", dt.Precision, dt.Scale, dt.ByteWidth*8)
	case TIMESTAMP:
		return "ts" + dt.Unit.String()[:1] + ":" + dt.TimeZone
	case FIXED_SIZE_LIST:
		return "+w:" + strconv.Itoa(int(dt.ListSize))
	case SPARSE_UNION, DENSE_UNION:
		var b strings.Builder
		if dt.ID == DENSE_UNION {
			b.WriteString("+ud:")
		} else {
			b.WriteString("+us:")
		}
		for i, c := range dt.TypeCodes {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(int(c)))
		}
		return b.String()
	}
	return ""
}

func hasUnit(id Type) bool {
	switch id {
	case TIME32, TIME64, DURATION, TIMESTAMP:
		return true
	}
	return false
}
