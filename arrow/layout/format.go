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
	"strings"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/bitutil"
	"github.com/columnar/carrow/arrow/cdata"
	"github.com/columnar/carrow/internal/json"
)

const nullStr = "(null)"

func valueStr[T any](a indexable[T], i int) string {
	v := a.At(i)
	if !v.Valid {
		return nullStr
	}
	return fmt.Sprint(v.Value)
}

func formatArray(a Array) string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < a.Len(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.ValueStr(i))
	}
	b.WriteByte(']')
	return b.String()
}

func marshalArray(a Array) ([]byte, error) {
	vals := make([]any, a.Len())
	for i := range vals {
		vals[i] = a.GetOneForMarshal(i)
	}
	return json.Marshal(vals)
}

func checkBuffers(p *cdata.Proxy, dt arrow.DataType, n int) error {
	if p.NumBuffers() != n {
		return fmt.Errorf("%w: %s array has %d buffers, expected %d", arrow.ErrInvalid, dt, p.NumBuffers(), n)
	}
	return nil
}

// checkBufferLen verifies buffer i holds at least need bytes. Empty arrays
// may omit their buffers.
func checkBufferLen(p *cdata.Proxy, dt arrow.DataType, i, need int) error {
	if p.Len() == 0 && len(p.Buffer(i)) == 0 {
		return nil
	}
	if got := len(p.Buffer(i)); got < need {
		return fmt.Errorf("%w: %s buffer %d holds %d bytes, need %d", arrow.ErrInvalid, dt, i, got, need)
	}
	return nil
}

func bitsLen(p *cdata.Proxy) int {
	return int(bitutil.BytesForBits(int64(p.Offset() + p.Len())))
}
