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
	"strings"
)

// Type is the physical type identifier of a column.
type Type int

//go:generate stringer -type=Type
const (
	NULL Type = iota
	BOOL
	UINT8
	INT8
	UINT16
	INT16
	UINT32
	INT32
	UINT64
	INT64
	FLOAT16
	FLOAT32
	FLOAT64
	STRING
	BINARY
	FIXED_SIZE_BINARY
	DATE32
	DATE64
	TIMESTAMP
	TIME32
	TIME64
	INTERVAL_MONTHS
	INTERVAL_DAY_TIME
	DECIMAL128
	DECIMAL256
	LIST
	STRUCT
	SPARSE_UNION
	DENSE_UNION
	DICTIONARY
	MAP
	FIXED_SIZE_LIST
	DURATION
	LARGE_STRING
	LARGE_BINARY
	LARGE_LIST
	INTERVAL_MONTH_DAY_NANO
	RUN_END_ENCODED
	DECIMAL32
	DECIMAL64
)

// TimeUnit is the resolution of temporal types.
type TimeUnit int

const (
	Second TimeUnit = iota
	Millisecond
	Microsecond
	Nanosecond
)

var timeUnitNames = [...]string{"s", "ms", "us", "ns"}

func (u TimeUnit) String() string { return timeUnitNames[u&3] }

// Fixed-width value types whose in-memory representation is a plain
// integer.
type (
	Date32        int32
	Date64        int64
	Time32        int32
	Time64        int64
	Timestamp     int64
	Duration      int64
	MonthInterval int32
)

// DayTimeInterval is an INTERVAL_DAY_TIME value.
type DayTimeInterval struct {
	Days         int32 `json:"days"`
	Milliseconds int32 `json:"milliseconds"`
}

// MonthDayNanoInterval is an INTERVAL_MONTH_DAY_NANO value.
type MonthDayNanoInterval struct {
	Months      int32 `json:"months"`
	Days        int32 `json:"days"`
	Nanoseconds int64 `json:"nanoseconds"`
}

const (
	Int32SizeBytes = 4
	Int64SizeBytes = 8
)

// DataType is a decoded format string. Only the fields relevant to ID are
// populated.
type DataType struct {
	ID Type
	// ByteWidth of FIXED_SIZE_BINARY values and of decimals.
	ByteWidth int
	Unit      TimeUnit
	TimeZone  string
	Precision int32
	Scale     int32
	ListSize  int32
	TypeCodes []int8
}

// BitWidth returns the width of a single value for fixed-width types and
// zero otherwise.
func (dt DataType) BitWidth() int {
	switch dt.ID {
	case BOOL:
		return 1
	case INT8, UINT8:
		return 8
	case INT16, UINT16, FLOAT16:
		return 16
	case INT32, UINT32, FLOAT32, DATE32, TIME32, INTERVAL_MONTHS:
		return 32
	case INT64, UINT64, FLOAT64, DATE64, TIME64, TIMESTAMP, DURATION, INTERVAL_DAY_TIME:
		return 64
	case INTERVAL_MONTH_DAY_NANO:
		return 128
	case FIXED_SIZE_BINARY, DECIMAL32, DECIMAL64, DECIMAL128, DECIMAL256:
		return dt.ByteWidth * 8
	}
	return 0
}

func (dt DataType) IsFixedWidth() bool { return dt.BitWidth() > 0 }

func (dt DataType) String() string {
	switch dt.ID {
	case NULL:
		return "null"
	case BOOL:
		return "bool"
	case STRING:
		return "utf8"
	case LARGE_STRING:
		return "large_utf8"
	case FIXED_SIZE_BINARY:
		return fmt.Sprintf("fixed_size_binary[%d]", dt.ByteWidth)
	case TIME32, TIME64, DURATION:
		return fmt.Sprintf("%s[%s]", strings.ToLower(dt.ID.String()), dt.Unit)
	case TIMESTAMP:
		if dt.TimeZone != "" {
			return fmt.Sprintf("timestamp[%s, tz=%s]", dt.Unit, dt.TimeZone)
		}
		return fmt.Sprintf("timestamp[%s]", dt.Unit)
	case INTERVAL_MONTHS:
		return "month_interval"
	case INTERVAL_DAY_TIME:
		return "day_time_interval"
	case INTERVAL_MONTH_DAY_NANO:
		return "month_day_nano_interval"
	case DECIMAL32, DECIMAL64, DECIMAL128, DECIMAL256:
		return fmt.Sprintf("%s(%d, %d)", strings.ToLower(dt.ID.String()), dt.Precision, dt.Scale)
	case FIXED_SIZE_LIST:
		return fmt.Sprintf("fixed_size_list[%d]", dt.ListSize)
	}
	return strings.ToLower(dt.ID.String())
}

// HasValidityBitmap reports whether buffer 0 of arrays of this type is a
// validity bitmap.
func HasValidityBitmap(id Type) bool {
	switch id {
	case NULL, SPARSE_UNION, DENSE_UNION, RUN_END_ENCODED:
		return false
	}
	return true
}
