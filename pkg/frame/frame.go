package frame

import (
	"time"

	"github.com/pkg/errors"
)

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Lookup returns the schema entry for name.
func (s Schema) Lookup(name string) (ColumnSchema, bool) {
	for _, cs := range s.Columns {
		if cs.Name == name {
			return cs, true
		}
	}
	return ColumnSchema{}, false
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Numeric reports whether values of the kind convert to float64.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	// Value returns the cell as a Go value, nil when null.
	Value(i int) any

	appendNull()
	take(idx []int) Column
}

type BoolColumn struct {
	name  string
	data  []bool
	nulls []bool
}

func NewBoolColumn(name string, n int) *BoolColumn {
	return &BoolColumn{name: name, data: make([]bool, n), nulls: make([]bool, n)}
}
func (c *BoolColumn) Name() string           { return c.name }
func (c *BoolColumn) Kind() Kind             { return KindBool }
func (c *BoolColumn) Len() int               { return len(c.data) }
func (c *BoolColumn) IsNull(i int) bool      { return c.nulls[i] }
func (c *BoolColumn) SetNull(i int)          { c.nulls[i] = true }
func (c *BoolColumn) Get(i int) (bool, bool) { return c.data[i], !c.nulls[i] }
func (c *BoolColumn) Set(i int, v bool)      { c.data[i] = v; c.nulls[i] = false }
func (c *BoolColumn) AppendNull()            { c.appendNull() }
func (c *BoolColumn) Append(v bool)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *BoolColumn) appendNull()            { c.data = append(c.data, false); c.nulls = append(c.nulls, true) }
func (c *BoolColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}
func (c *BoolColumn) take(idx []int) Column {
	out := NewBoolColumn(c.name, len(idx))
	for k, i := range idx {
		out.data[k], out.nulls[k] = c.data[i], c.nulls[i]
	}
	return out
}

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func NewIntColumn(name string, n int) *IntColumn {
	return &IntColumn{name: name, data: make([]int64, n), nulls: make([]bool, n)}
}
func (c *IntColumn) Name() string            { return c.name }
func (c *IntColumn) Kind() Kind              { return KindInt }
func (c *IntColumn) Len() int                { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *IntColumn) SetNull(i int)           { c.nulls[i] = true }
func (c *IntColumn) Get(i int) (int64, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Set(i int, v int64)      { c.data[i] = v; c.nulls[i] = false }
func (c *IntColumn) AppendNull()             { c.appendNull() }
func (c *IntColumn) Append(v int64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *IntColumn) appendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *IntColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}
func (c *IntColumn) take(idx []int) Column {
	out := NewIntColumn(c.name, len(idx))
	for k, i := range idx {
		out.data[k], out.nulls[k] = c.data[i], c.nulls[i]
	}
	return out
}

type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{name: name, data: make([]float64, n), nulls: make([]bool, n)}
}
func (c *FloatColumn) Name() string              { return c.name }
func (c *FloatColumn) Kind() Kind                { return KindFloat }
func (c *FloatColumn) Len() int                  { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool         { return c.nulls[i] }
func (c *FloatColumn) SetNull(i int)             { c.nulls[i] = true }
func (c *FloatColumn) Get(i int) (float64, bool) { return c.data[i], !c.nulls[i] }
func (c *FloatColumn) Set(i int, v float64)      { c.data[i] = v; c.nulls[i] = false }
func (c *FloatColumn) AppendNull()               { c.appendNull() }
func (c *FloatColumn) Append(v float64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *FloatColumn) appendNull()               { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *FloatColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}
func (c *FloatColumn) take(idx []int) Column {
	out := NewFloatColumn(c.name, len(idx))
	for k, i := range idx {
		out.data[k], out.nulls[k] = c.data[i], c.nulls[i]
	}
	return out
}

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{name: name, data: make([]string, n), nulls: make([]bool, n)}
}
func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Kind() Kind               { return KindString }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) SetNull(i int)            { c.nulls[i] = true }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *StringColumn) AppendNull()              { c.appendNull() }
func (c *StringColumn) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *StringColumn) appendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }
func (c *StringColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}
func (c *StringColumn) take(idx []int) Column {
	out := NewStringColumn(c.name, len(idx))
	for k, i := range idx {
		out.data[k], out.nulls[k] = c.data[i], c.nulls[i]
	}
	return out
}

type TimeColumn struct {
	name  string
	data  []time.Time
	nulls []bool
}

func NewTimeColumn(name string, n int) *TimeColumn {
	return &TimeColumn{name: name, data: make([]time.Time, n), nulls: make([]bool, n)}
}
func (c *TimeColumn) Name() string                { return c.name }
func (c *TimeColumn) Kind() Kind                  { return KindTime }
func (c *TimeColumn) Len() int                    { return len(c.data) }
func (c *TimeColumn) IsNull(i int) bool           { return c.nulls[i] }
func (c *TimeColumn) SetNull(i int)               { c.nulls[i] = true }
func (c *TimeColumn) Get(i int) (time.Time, bool) { return c.data[i], !c.nulls[i] }
func (c *TimeColumn) Set(i int, v time.Time)      { c.data[i] = v; c.nulls[i] = false }
func (c *TimeColumn) AppendNull()                 { c.appendNull() }
func (c *TimeColumn) Append(v time.Time) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}
func (c *TimeColumn) appendNull() {
	c.data = append(c.data, time.Time{})
	c.nulls = append(c.nulls, true)
}
func (c *TimeColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}
func (c *TimeColumn) take(idx []int) Column {
	out := NewTimeColumn(c.name, len(idx))
	for k, i := range idx {
		out.data[k], out.nulls[k] = c.data[i], c.nulls[i]
	}
	return out
}

func newColumn(cs ColumnSchema, n int) Column {
	switch cs.Type {
	case KindBool:
		return NewBoolColumn(cs.Name, n)
	case KindInt:
		return NewIntColumn(cs.Name, n)
	case KindFloat:
		return NewFloatColumn(cs.Name, n)
	case KindString:
		return NewStringColumn(cs.Name, n)
	case KindTime:
		return NewTimeColumn(cs.Name, n)
	default:
		panic("invalid column kind")
	}
}

// Frame is a columnar container for tabular data. Every row carries a value
// (possibly null) for every column of the schema.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		f.cols[i] = newColumn(cs, 0)
		f.index[cs.Name] = i
	}
	return f
}

func (f *Frame) Schema() Schema  { return f.schema }
func (f *Frame) Rows() int       { return f.nrows }
func (f *Frame) Cols() int       { return len(f.cols) }
func (f *Frame) Names() []string { return f.schema.Names() }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Has reports whether every named column exists.
func (f *Frame) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := f.index[n]; !ok {
			return false
		}
	}
	return true
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.appendNull()
	}
	f.nrows++
}

// Value returns the cell at (row, name) or nil when null or unknown.
func (f *Frame) Value(row int, name string) any {
	c, ok := f.ColumnByName(name)
	if !ok {
		return nil
	}
	return c.Value(row)
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return errors.Errorf("unknown column: %s", name)
	}
	if v == nil {
		f.cols[i].SetNull(row)
		return nil
	}
	switch col := f.cols[i].(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return errors.Errorf("column %s expects bool, got %T", name, v)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int32:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return errors.Errorf("column %s expects int/int64, got %T", name, v)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return errors.Errorf("column %s expects float64, got %T", name, v)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return errors.Errorf("column %s expects string, got %T", name, v)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return errors.Errorf("column %s expects time.Time, got %T", name, v)
		}
		col.Set(row, t)
	default:
		return errors.New("unknown column kind")
	}
	return nil
}
