package jsonlio

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	fr "github.com/wdm0006/imputekit/pkg/frame"
	iox "github.com/wdm0006/imputekit/pkg/io/ioutils"
)

type ReaderOptions struct {
	SampleRows int
}

type Reader struct {
	src io.ReadCloser
	dec *json.Decoder
	opt ReaderOptions
	buf []map[string]any
}

// Open opens a (possibly gzipped) JSON-lines file.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	return &Reader{src: rc, dec: json.NewDecoder(rc), opt: opt}, nil
}

func (r *Reader) Close() error { return r.src.Close() }

// InferSchema samples records and derives one column per key seen, sorted by name.
func (r *Reader) InferSchema() (fr.Schema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(r.buf) < max {
		var m map[string]any
		if err := r.dec.Decode(&m); err != nil {
			if err == io.EOF {
				break
			}
			return fr.Schema{}, err
		}
		r.buf = append(r.buf, m)
	}
	return inferSchema(r.buf), nil
}

func (r *Reader) next() (map[string]any, error) {
	if len(r.buf) > 0 {
		m := r.buf[0]
		r.buf = r.buf[1:]
		return m, nil
	}
	var m map[string]any
	if err := r.dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Reader) ReadAll(schema fr.Schema) (*fr.Frame, error) {
	f := fr.NewFrame(schema)
	for {
		m, err := r.next()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
}

// Load reads a whole JSON-lines file.
func Load(path string, opt ReaderOptions) (*fr.Frame, error) {
	r, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, err
	}
	return r.ReadAll(schema)
}

func setRowFromMap(f *fr.Frame, row int, m map[string]any) {
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		switch cs.Type {
		case fr.KindFloat:
			switch t := v.(type) {
			case float64:
				_ = f.SetCell(row, cs.Name, t)
			case string:
				if x, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case fr.KindInt:
			switch t := v.(type) {
			case float64:
				_ = f.SetCell(row, cs.Name, int64(t))
			case string:
				if x, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case fr.KindBool:
			switch t := v.(type) {
			case bool:
				_ = f.SetCell(row, cs.Name, t)
			case string:
				if x, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t))); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		default:
			switch t := v.(type) {
			case string:
				_ = f.SetCell(row, cs.Name, t)
			default:
				// fallback to JSON encoding
				b, _ := json.Marshal(t)
				_ = f.SetCell(row, cs.Name, string(b))
			}
		}
	}
}

func inferSchema(sample []map[string]any) fr.Schema {
	keysSet := map[string]struct{}{}
	for _, m := range sample {
		for k := range m {
			keysSet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keysSet))
	for k := range keysSet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	schema := fr.Schema{Columns: make([]fr.ColumnSchema, len(keys))}
	for i, k := range keys {
		schema.Columns[i] = fr.ColumnSchema{Name: k, Type: inferKind(sample, k), Nullable: true}
	}
	return schema
}

func inferKind(sample []map[string]any, k string) fr.Kind {
	nNum, nInt, nBool, nStr := 0, 0, 0, 0
	for _, m := range sample {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			nNum++
			if float64(int64(t)) == t {
				nInt++
			}
		case bool:
			nBool++
		default:
			nStr++
		}
	}
	switch {
	case nBool > nNum && nBool >= nStr:
		return fr.KindBool
	case nNum > nStr:
		if nInt == nNum {
			return fr.KindInt
		}
		return fr.KindFloat
	default:
		return fr.KindString
	}
}
