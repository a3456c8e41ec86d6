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

package arrow_test

import (
	"encoding/binary"
	"testing"

	"github.com/columnar/carrow/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatRoundTrip(t *testing.T) {
	tests := []struct {
		format string
		id     arrow.Type
		width  int
		str    string
	}{
		{"n", arrow.NULL, 0, "null"},
		{"b", arrow.BOOL, 1, "bool"},
		{"c", arrow.INT8, 8, "int8"},
		{"C", arrow.UINT8, 8, "uint8"},
		{"s", arrow.INT16, 16, "int16"},
		{"S", arrow.UINT16, 16, "uint16"},
		{"i", arrow.INT32, 32, "int32"},
		{"I", arrow.UINT32, 32, "uint32"},
		{"l", arrow.INT64, 64, "int64"},
		{"L", arrow.UINT64, 64, "uint64"},
		{"e", arrow.FLOAT16, 16, "float16"},
		{"f", arrow.FLOAT32, 32, "float32"},
		{"g", arrow.FLOAT64, 64, "float64"},
		{"u", arrow.STRING, 0, "utf8"},
		{"U", arrow.LARGE_STRING, 0, "large_utf8"},
		{"z", arrow.BINARY, 0, "binary"},
		{"Z", arrow.LARGE_BINARY, 0, "large_binary"},
		{"w:16", arrow.FIXED_SIZE_BINARY, 128, "fixed_size_binary[16]"},
		{"d:10,2", arrow.DECIMAL128, 128, "decimal128(10, 2)"},
		{"d:10,2,256", arrow.DECIMAL256, 256, "decimal256(10, 2)"},
		{"d:5,1,32", arrow.DECIMAL32, 32, "decimal32(5, 1)"},
		{"tdD", arrow.DATE32, 32, "date32"},
		{"tdm", arrow.DATE64, 64, "date64"},
		{"ttm", arrow.TIME32, 32, "time32[ms]"},
		{"ttn", arrow.TIME64, 64, "time64[ns]"},
		{"tDs", arrow.DURATION, 64, "duration[s]"},
		{"tsu:", arrow.TIMESTAMP, 64, "timestamp[us]"},
		{"tsn:UTC", arrow.TIMESTAMP, 64, "timestamp[ns, tz=UTC]"},
		{"tiM", arrow.INTERVAL_MONTHS, 32, "month_interval"},
		{"tin", arrow.INTERVAL_MONTH_DAY_NANO, 128, "month_day_nano_interval"},
		{"+l", arrow.LIST, 0, "list"},
		{"+L", arrow.LARGE_LIST, 0, "large_list"},
		{"+w:3", arrow.FIXED_SIZE_LIST, 0, "fixed_size_list[3]"},
		{"+s", arrow.STRUCT, 0, "struct"},
		{"+m", arrow.MAP, 0, "map"},
		{"+us:0,1", arrow.SPARSE_UNION, 0, "sparse_union"},
		{"+ud:4,7", arrow.DENSE_UNION, 0, "dense_union"},
		{"+r", arrow.RUN_END_ENCODED, 0, "run_end_encoded"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dt, err := arrow.ParseFormat(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.id, dt.ID)
			assert.Equal(t, tt.width, dt.BitWidth())
			assert.Equal(t, tt.str, dt.String())
			assert.Equal(t, tt.format, dt.Format())
		})
	}
}

func TestParseFormatErrors(t *testing.T) {
	for _, f := range []string{"", "x", "vu", "+x", "tt"} {
		_, err := arrow.ParseFormat(f)
		assert.ErrorIs(t, err, arrow.ErrNotImplemented, f)
	}
	for _, f := range []string{"w:", "w:abc", "d:1", "d:a,1", "+w:-1", "tsx:", "+us:1,x"} {
		_, err := arrow.ParseFormat(f)
		assert.ErrorIs(t, err, arrow.ErrInvalid, f)
	}
	_, err := arrow.ParseFormat("d:1,1,512")
	assert.ErrorIs(t, err, arrow.ErrNotImplemented)
}

func TestHasValidityBitmap(t *testing.T) {
	assert.False(t, arrow.HasValidityBitmap(arrow.NULL))
	assert.False(t, arrow.HasValidityBitmap(arrow.SPARSE_UNION))
	assert.False(t, arrow.HasValidityBitmap(arrow.RUN_END_ENCODED))
	assert.True(t, arrow.HasValidityBitmap(arrow.STRING))
	assert.True(t, arrow.HasValidityBitmap(arrow.INT32))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "LARGE_STRING", arrow.LARGE_STRING.String())
	assert.Equal(t, "Type(1000)", arrow.Type(1000).String())
}

func TestFlags(t *testing.T) {
	f := arrow.NewFlags(arrow.FlagNullable, arrow.FlagMapKeysSorted)
	assert.EqualValues(t, 6, f)
	assert.True(t, f.Has(arrow.FlagNullable))
	assert.False(t, f.Has(arrow.FlagDictionaryOrdered))
	assert.Equal(t, []arrow.Flag{arrow.FlagNullable, arrow.FlagMapKeysSorted}, f.Set())
	assert.Equal(t, "NULLABLE|MAP_KEYS_SORTED", f.String())

	f = f.With(arrow.FlagDictionaryOrdered).Without(arrow.FlagMapKeysSorted)
	assert.EqualValues(t, 3, f)
	assert.Equal(t, "NONE", arrow.Flags(0).String())

	// unknown bits survive
	assert.EqualValues(t, 10, arrow.Flags(8).With(arrow.FlagNullable))
	assert.Equal(t, []arrow.Flag{arrow.FlagNullable}, arrow.Flags(10).Set())
}

func TestMetadataEncoding(t *testing.T) {
	md := arrow.NewMetadata([]string{"k1", "key2"}, []string{"v", ""})
	enc := arrow.EncodeMetadata(md)
	require.Len(t, enc, 4+(4+2+4+1)+(4+4+4+0))
	assert.EqualValues(t, 2, binary.NativeEndian.Uint32(enc))
	assert.EqualValues(t, 2, binary.NativeEndian.Uint32(enc[4:]))
	assert.Equal(t, "k1", string(enc[8:10]))

	got, err := arrow.DecodeMetadata(enc)
	require.NoError(t, err)
	assert.True(t, md.Equal(got))
	v, ok := got.GetValue("key2")
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.Equal(t, -1, got.FindKey("missing"))

	assert.Nil(t, arrow.EncodeMetadata(arrow.Metadata{}))
	empty, err := arrow.DecodeMetadata(nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}

func TestMetadataDecodeTruncated(t *testing.T) {
	enc := arrow.EncodeMetadata(arrow.MetadataFrom(map[string]string{"b": "2", "a": "1"}))
	for n := 1; n < len(enc); n++ {
		_, err := arrow.DecodeMetadata(enc[:n])
		assert.ErrorIs(t, err, arrow.ErrInvalid, "len %d", n)
	}

	md, err := arrow.DecodeMetadata(enc)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, md.Keys())
	assert.Equal(t, []string{"1", "2"}, md.Values())
	assert.Equal(t, `["a": "1", "b": "2"]`, md.String())
}

func TestGetData(t *testing.T) {
	vals := []int32{1, -2, 3}
	raw := arrow.GetBytes(vals)
	assert.Len(t, raw, 12)
	assert.Equal(t, vals, arrow.GetData[int32](raw))
	assert.Nil(t, arrow.GetData[int64](nil))
	assert.Len(t, arrow.GetData[int64](raw), 1)
	assert.Equal(t, 8, arrow.SizeOf[arrow.Timestamp]())
}

func TestFloat16(t *testing.T) {
	for _, f := range []float32{0, 1, -2.5, 0.099975586, 65504, 6.1035156e-05, 5.9604645e-08} {
		assert.Equal(t, f, arrow.NewFloat16(f).Float32(), "%v", f)
	}
	assert.Equal(t, "1.5", arrow.NewFloat16(1.5).String())
	assert.EqualValues(t, 0x7c00, arrow.NewFloat16(1e6))
}
