package frame

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Row returns row i as a column-name keyed record. Null cells map to nil.
func (f *Frame) Row(i int) map[string]any {
	m := make(map[string]any, len(f.cols))
	for _, c := range f.cols {
		m[c.Name()] = c.Value(i)
	}
	return m
}

// Records returns every row as a record, in order.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, f.nrows)
	for i := range out {
		out[i] = f.Row(i)
	}
	return out
}

// AppendRecord appends one record. The record must carry exactly the schema's
// columns; missing keys or extra keys are rejected.
func (f *Frame) AppendRecord(rec map[string]any) error {
	if len(rec) != len(f.cols) {
		return errors.Errorf("record has %d fields, schema has %d", len(rec), len(f.cols))
	}
	for name := range rec {
		if _, ok := f.index[name]; !ok {
			return errors.Errorf("record field %q not in schema", name)
		}
	}
	f.AppendNullRow()
	row := f.nrows - 1
	for name, v := range rec {
		if err := f.SetCell(row, name, v); err != nil {
			return err
		}
	}
	return nil
}

// FromRecords builds a Frame from records sharing one column set. Column
// order follows order when given, otherwise sorted names. Kinds are taken from
// the first non-null value of each column; all-null columns become strings.
func FromRecords(records []map[string]any, order ...string) (*Frame, error) {
	if len(order) == 0 && len(records) > 0 {
		for k := range records[0] {
			order = append(order, k)
		}
		sort.Strings(order)
	}
	schema := Schema{Columns: make([]ColumnSchema, len(order))}
	for i, name := range order {
		kind := KindString
		for _, r := range records {
			if v := r[name]; v != nil {
				kind = kindOf(v)
				break
			}
		}
		if kind == KindInvalid {
			return nil, errors.Errorf("column %q has unsupported value type", name)
		}
		schema.Columns[i] = ColumnSchema{Name: name, Type: kind, Nullable: true}
	}
	f := NewFrame(schema)
	for i, r := range records {
		if err := f.AppendRecord(r); err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
	}
	return f, nil
}

func kindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int, int32, int64:
		return KindInt
	case float32, float64:
		return KindFloat
	case string:
		return KindString
	case time.Time:
		return KindTime
	default:
		return KindInvalid
	}
}

// Take returns a new Frame holding the given rows in the given order.
func (f *Frame) Take(idx []int) *Frame {
	out := &Frame{schema: f.schema, cols: make([]Column, len(f.cols)), index: make(map[string]int, len(f.cols)), nrows: len(idx)}
	for i, c := range f.cols {
		out.cols[i] = c.take(idx)
		out.index[c.Name()] = i
	}
	return out
}

// Slice returns rows [from, to) as a new Frame.
func (f *Frame) Slice(from, to int) *Frame {
	idx := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		idx = append(idx, i)
	}
	return f.Take(idx)
}

// Clone deep-copies the frame.
func (f *Frame) Clone() *Frame {
	return f.Slice(0, f.nrows)
}

// AddColumn appends a column. Its length must match the frame's row count.
func (f *Frame) AddColumn(c Column, nullable bool) error {
	if _, dup := f.index[c.Name()]; dup {
		return errors.Errorf("column %q already exists", c.Name())
	}
	if c.Len() != f.nrows {
		return errors.Errorf("column %q has %d rows, frame has %d", c.Name(), c.Len(), f.nrows)
	}
	f.schema = Schema{Columns: append(append([]ColumnSchema(nil), f.schema.Columns...), ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: nullable})}
	f.index[c.Name()] = len(f.cols)
	f.cols = append(f.cols, c)
	return nil
}

// Select returns a frame sharing no storage with f that keeps only names.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cs := make([]ColumnSchema, 0, len(names))
	for _, n := range names {
		s, ok := f.schema.Lookup(n)
		if !ok {
			return nil, errors.Errorf("unknown column: %s", n)
		}
		cs = append(cs, s)
	}
	src := f.Clone()
	out := &Frame{schema: Schema{Columns: cs}, index: make(map[string]int, len(cs)), nrows: f.nrows}
	for i, s := range cs {
		c, _ := src.ColumnByName(s.Name)
		out.cols = append(out.cols, c)
		out.index[s.Name] = i
	}
	return out, nil
}

// Float returns the numeric value at (row, name); ok is false for nulls and
// non-numeric columns.
func (f *Frame) Float(row int, name string) (float64, bool) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return 0, false
	}
	switch t := c.(type) {
	case *FloatColumn:
		return t.Get(row)
	case *IntColumn:
		v, ok := t.Get(row)
		return float64(v), ok
	case *BoolColumn:
		v, ok := t.Get(row)
		if v {
			return 1, ok
		}
		return 0, ok
	}
	return 0, false
}

// String returns the cell at (row, name) formatted as text; ok is false for nulls.
func (f *Frame) String(row int, name string) (string, bool) {
	v := f.Value(row, name)
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case time.Time:
		return t.Format(time.RFC3339), true
	default:
		return fmt.Sprint(t), true
	}
}

// DropColumn removes name from the frame. Unknown names are an error.
func (f *Frame) DropColumn(name string) error {
	i, ok := f.index[name]
	if !ok {
		return errors.Errorf("unknown column: %s", name)
	}
	cols := make([]ColumnSchema, 0, len(f.cols)-1)
	cols = append(cols, f.schema.Columns[:i]...)
	cols = append(cols, f.schema.Columns[i+1:]...)
	f.schema = Schema{Columns: cols}
	f.cols = append(f.cols[:i:i], f.cols[i+1:]...)
	f.index = make(map[string]int, len(f.cols))
	for k, c := range f.cols {
		f.index[c.Name()] = k
	}
	return nil
}
