package parquetio

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	local "github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	pw "github.com/xitongsys/parquet-go/writer"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

func parquetSchemaJSON(s fr.Schema) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case fr.KindFloat:
			tag += "DOUBLE"
		case fr.KindInt:
			tag += "INT64"
		case fr.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// rowJSON renders row r as the JSON document the xitongsys JSONWriter expects.
// Null cells are omitted; times are written as RFC3339 strings.
func rowJSON(f *fr.Frame, r int) (string, error) {
	rec := make(map[string]any, f.Cols())
	for _, cs := range f.Schema().Columns {
		if cs.Type == fr.KindTime {
			if s, ok := f.String(r, cs.Name); ok {
				rec[cs.Name] = s
			}
			continue
		}
		if v := f.Value(r, cs.Name); v != nil {
			rec[cs.Name] = v
		}
	}
	b, err := json.Marshal(rec)
	return string(b), err
}

type frameWriter struct {
	file source.ParquetFile
	w    *pw.JSONWriter
}

func newFrameWriter(path string, s fr.Schema) (*frameWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, err
	}
	w, err := pw.NewJSONWriter(parquetSchemaJSON(s), fw, 4)
	if err != nil {
		_ = fw.Close()
		return nil, errors.Wrap(err, "parquet writer init")
	}
	return &frameWriter{file: fw, w: w}, nil
}

func (fw *frameWriter) write(f *fr.Frame) error {
	for r := 0; r < f.Rows(); r++ {
		rec, err := rowJSON(f, r)
		if err != nil {
			return err
		}
		if err := fw.w.Write(rec); err != nil {
			return errors.Wrapf(err, "parquet write row %d", r)
		}
	}
	return nil
}

func (fw *frameWriter) close() error {
	if err := fw.w.WriteStop(); err != nil {
		_ = fw.file.Close()
		return err
	}
	return fw.file.Close()
}

// WriteAll writes a Frame to a Parquet file.
func WriteAll(path string, f *fr.Frame) error {
	fw, err := newFrameWriter(path, f.Schema())
	if err != nil {
		return err
	}
	if err := fw.write(f); err != nil {
		_ = fw.close()
		return err
	}
	return fw.close()
}
