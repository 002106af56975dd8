package parquetio

import (
	parquet "github.com/segmentio/parquet-go"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// StreamReader reads Parquet rows in chunks as Frames.
type StreamReader struct {
	r   *Reader
	buf []parquet.Row
}

func NewStreamReader(path string, chunkSize int) (*StreamReader, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = 8192
	}
	return &StreamReader{r: r, buf: make([]parquet.Row, chunkSize)}, nil
}

func (s *StreamReader) Close() error { return s.r.Close() }

func (s *StreamReader) Schema() fr.Schema { return s.r.schema }

func (s *StreamReader) Next() (*fr.Frame, error) {
	f := fr.NewFrame(s.r.schema)
	n, err := s.r.read(f, s.buf)
	if n > 0 {
		return f, nil
	}
	return nil, err
}

// StreamWriter writes Frames to a Parquet file incrementally. The file schema
// is taken from the first frame written.
type StreamWriter struct {
	path string
	fw   *frameWriter
}

func NewStreamWriter(path string) (*StreamWriter, error) {
	return &StreamWriter{path: path}, nil
}

func (s *StreamWriter) Write(f *fr.Frame) error {
	if s.fw == nil {
		fw, err := newFrameWriter(s.path, f.Schema())
		if err != nil {
			return err
		}
		s.fw = fw
	}
	return s.fw.write(f)
}

func (s *StreamWriter) Close() error {
	if s.fw == nil {
		return nil
	}
	return s.fw.close()
}
