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

// Command carrow-cat prints the record batches of an Arrow integration
// JSON file.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/docopt/docopt-go"
	"github.com/pterm/pterm"
	"gonum.org/v1/gonum/stat"

	"github.com/columnar/carrow/arrow"
	"github.com/columnar/carrow/arrow/internal/arrjson"
	"github.com/columnar/carrow/arrow/layout"
	"github.com/columnar/carrow/arrow/table"
)

const usage = `Carrow Cat.
Usage:
  carrow-cat [--limit=<n>] [--stats] [--no-color] <file>
  carrow-cat -h | --help
Options:
  -h --help     Show this screen.
  --limit=<n>   Print at most n rows of each batch, 0 for all [default: 0].
  --stats       Print per-column layout statistics instead of rows.
  --no-color    Disable styled output.
`

type config struct {
	File    string
	Limit   int
	Stats   bool
	NoColor bool
}

func main() {
	opts, _ := docopt.ParseDoc(usage)
	var cfg config
	var err error
	cfg.File, _ = opts.String("<file>")
	cfg.Stats, _ = opts.Bool("--stats")
	cfg.NoColor, _ = opts.Bool("--no-color")
	if cfg.Limit, err = opts.Int("--limit"); err != nil || cfg.Limit < 0 {
		fmt.Fprintln(os.Stderr, "error: --limit must be a non-negative integer")
		os.Exit(1)
	}
	if cfg.NoColor {
		pterm.DisableStyling()
	}

	f, err := os.Open(cfg.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error opening file:", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := run(f, os.Stdout, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(r io.Reader, w io.Writer, cfg config) error {
	rdr, err := arrjson.NewReader(r)
	if err != nil {
		return err
	}

	for i := 0; ; i++ {
		rec, err := rdr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "batch %d: %d rows\n", i, rec.NumRows())
		if cfg.Stats {
			err = printStats(w, rec)
		} else {
			err = printRows(w, rec, cfg.Limit)
		}
		rec.Release()
		if err != nil {
			return err
		}
	}
}

func printRows(w io.Writer, rec *table.RecordBatch, limit int) error {
	n := int(rec.NumRows())
	if limit > 0 {
		n = min(n, limit)
	}

	data := pterm.TableData{rec.ColumnNames()}
	for row := 0; row < n; row++ {
		line := make([]string, rec.NumCols())
		for j, col := range rec.Columns() {
			line[j] = col.ValueStr(row)
		}
		data = append(data, line)
	}

	out, err := pterm.DefaultTable.WithHasHeader(true).WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	if n < int(rec.NumRows()) {
		fmt.Fprintf(w, "... %d more rows\n", int(rec.NumRows())-n)
	}
	return nil
}

func printStats(w io.Writer, rec *table.RecordBatch) error {
	data := pterm.TableData{{"column", "format", "layout", "length", "nulls", "value bytes", "mean", "stddev"}}
	for j, col := range rec.Columns() {
		var st colStats
		if err := col.Accept(&st); err != nil {
			return err
		}
		data = append(data, []string{
			rec.ColumnName(j),
			col.Proxy().Format(),
			st.kind,
			strconv.Itoa(col.Len()),
			strconv.Itoa(col.NullN()),
			strconv.Itoa(st.bytes),
			st.mean,
			st.stddev})
	}

	out, err := pterm.DefaultTable.WithRightAlignment(true).
		WithHasHeader(true).WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}

// colStats records the layout of a column and the size of its value
// data. Dictionary columns count their dictionary's data. Numeric
// columns also get the mean and standard deviation of their valid values.
type colStats struct {
	kind  string
	bytes int

	mean, stddev string
}

func (s *colStats) VisitNull(*layout.Null) error {
	s.kind = "null"
	return nil
}

func (s *colStats) VisitBoolean(b *layout.Boolean) error {
	s.kind = "boolean"
	s.bytes = (b.Len() + 7) / 8
	return nil
}

func (s *colStats) VisitPrimitive(a layout.Array) error {
	s.kind = "primitive"
	s.bytes = a.Len() * a.DataType().BitWidth() / 8

	var vals []float64
	switch a := a.(type) {
	case *layout.Primitive[int8]:
		vals = validFloats(a)
	case *layout.Primitive[uint8]:
		vals = validFloats(a)
	case *layout.Primitive[int16]:
		vals = validFloats(a)
	case *layout.Primitive[uint16]:
		vals = validFloats(a)
	case *layout.Primitive[int32]:
		vals = validFloats(a)
	case *layout.Primitive[uint32]:
		vals = validFloats(a)
	case *layout.Primitive[int64]:
		vals = validFloats(a)
	case *layout.Primitive[uint64]:
		vals = validFloats(a)
	case *layout.Primitive[float32]:
		vals = validFloats(a)
	case *layout.Primitive[float64]:
		vals = validFloats(a)
	}
	s.setMoments(vals)
	return nil
}

func validFloats[T arrow.FixedWidthType](a *layout.Primitive[T]) []float64 {
	out := make([]float64, 0, a.Len())
	for _, v := range a.All() {
		if v.Valid {
			out = append(out, float64(v.Value))
		}
	}
	return out
}

func (s *colStats) setMoments(vals []float64) {
	if len(vals) > 0 {
		mean, std := stat.MeanStdDev(vals, nil)
		s.mean = strconv.FormatFloat(mean, 'g', 6, 64)
		s.stddev = strconv.FormatFloat(std, 'g', 6, 64)
	}
}

func (s *colStats) VisitFixedSizeBinary(a *layout.FixedSizeBinary) error {
	s.kind = "fixed-size binary"
	if name, ok := a.Proxy().Metadata().GetValue(arrow.ExtensionNameKey); ok {
		s.kind = name
	}
	s.bytes = len(a.ValueData())
	return nil
}

func (s *colStats) VisitDecimal(a *layout.Decimal) error {
	s.kind = "decimal"
	s.bytes = a.Len() * a.DataType().ByteWidth

	vals := make([]float64, 0, a.Len())
	for _, v := range a.All() {
		if !v.Valid {
			continue
		}
		f, err := v.Value.Float64()
		if err != nil {
			return err
		}
		vals = append(vals, f)
	}
	s.setMoments(vals)
	return nil
}

func (s *colStats) VisitList(a layout.ListArray) error {
	var vals colStats
	if err := a.ListValues().Accept(&vals); err != nil {
		return err
	}
	s.kind = "list<" + vals.kind + ">"
	s.bytes = vals.bytes
	return nil
}

func (s *colStats) VisitBinary(a *layout.Binary[int32]) error {
	s.kind = "binary"
	s.bytes = len(a.ValueData())
	return nil
}

func (s *colStats) VisitLargeBinary(a *layout.Binary[int64]) error {
	s.kind = "large binary"
	s.bytes = len(a.ValueData())
	return nil
}

func (s *colStats) VisitDictionary(d layout.DictionaryArray) error {
	var vals colStats
	if err := d.Values().Accept(&vals); err != nil {
		return err
	}
	s.kind = "dictionary<" + vals.kind + ">"
	s.bytes = vals.bytes
	return nil
}
