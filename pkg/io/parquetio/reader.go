package parquetio

import (
	"io"
	"os"

	"github.com/pkg/errors"
	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/imputekit/pkg/errs"
	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// Reader reads a flat Parquet file row group by row group. Nested schemas are
// not supported.
type Reader struct {
	file   *os.File
	reader *parquet.Reader
	schema fr.Schema
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.FromOS(err, path)
	}
	r := parquet.NewReader(f)
	schema, err := frameSchema(r.Schema())
	if err != nil {
		_ = r.Close()
		_ = f.Close()
		return nil, err
	}
	return &Reader{file: f, reader: r, schema: schema}, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() fr.Schema { return r.schema }

// read appends up to len(buf) rows to f and reports io.EOF once the file is drained.
func (r *Reader) read(f *fr.Frame, buf []parquet.Row) (int, error) {
	n, err := r.reader.ReadRows(buf)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
		setRow(f, f.Rows()-1, buf[i])
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	if n == 0 || errors.Is(err, io.EOF) {
		return n, io.EOF
	}
	return n, nil
}

func (r *Reader) ReadAll() (*fr.Frame, error) {
	f := fr.NewFrame(r.schema)
	buf := make([]parquet.Row, 1024)
	for {
		if _, err := r.read(f, buf); err != nil {
			if errors.Is(err, io.EOF) {
				return f, nil
			}
			return nil, err
		}
	}
}

// Load reads a whole Parquet file.
func Load(path string) (*fr.Frame, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadAll()
}

func frameSchema(s *parquet.Schema) (fr.Schema, error) {
	fields := s.Fields()
	out := fr.Schema{Columns: make([]fr.ColumnSchema, len(fields))}
	for i, fd := range fields {
		if !fd.Leaf() {
			return fr.Schema{}, errors.Errorf("parquet column %q is nested", fd.Name())
		}
		var k fr.Kind
		switch fd.Type().Kind() {
		case parquet.Boolean:
			k = fr.KindBool
		case parquet.Int32, parquet.Int64:
			k = fr.KindInt
		case parquet.Float, parquet.Double:
			k = fr.KindFloat
		default:
			k = fr.KindString
		}
		out.Columns[i] = fr.ColumnSchema{Name: fd.Name(), Type: k, Nullable: fd.Optional()}
	}
	return out, nil
}

func setRow(f *fr.Frame, row int, values parquet.Row) {
	cols := f.Schema().Columns
	for _, v := range values {
		c := v.Column()
		if c < 0 || c >= len(cols) || v.IsNull() {
			continue
		}
		name := cols[c].Name
		switch v.Kind() {
		case parquet.Boolean:
			_ = f.SetCell(row, name, v.Boolean())
		case parquet.Int32:
			_ = f.SetCell(row, name, int64(v.Int32()))
		case parquet.Int64:
			_ = f.SetCell(row, name, v.Int64())
		case parquet.Float:
			_ = f.SetCell(row, name, float64(v.Float()))
		case parquet.Double:
			_ = f.SetCell(row, name, v.Double())
		case parquet.ByteArray, parquet.FixedLenByteArray:
			_ = f.SetCell(row, name, string(v.ByteArray()))
		default:
			_ = f.SetCell(row, name, v.String())
		}
	}
}
