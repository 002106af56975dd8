package jsonlio

import (
	"io"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// StreamReader yields chunks of up to chunkSize rows. The schema comes from
// the first SampleRows records.
type StreamReader struct {
	r         *Reader
	schema    fr.Schema
	chunkSize int
}

func NewStreamReader(path string, chunkSize int) (*StreamReader, error) {
	r, err := Open(path, ReaderOptions{})
	if err != nil {
		return nil, err
	}
	schema, err := r.InferSchema()
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	return &StreamReader{r: r, schema: schema, chunkSize: chunkSize}, nil
}

func (s *StreamReader) Next() (*fr.Frame, error) {
	f := fr.NewFrame(s.schema)
	for f.Rows() < s.chunkSize {
		m, err := s.r.next()
		if err == io.EOF {
			if f.Rows() == 0 {
				return nil, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
	return f, nil
}

func (s *StreamReader) Schema() fr.Schema { return s.schema }

func (s *StreamReader) Close() error { return s.r.Close() }
