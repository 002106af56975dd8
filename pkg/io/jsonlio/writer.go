package jsonlio

import (
	"encoding/json"
	"io"

	fr "github.com/wdm0006/imputekit/pkg/frame"
	iox "github.com/wdm0006/imputekit/pkg/io/ioutils"
)

// WriteAll writes one JSON object per row; null cells are omitted.
func WriteAll(path string, f *fr.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := encodeRows(json.NewEncoder(out), f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func encodeRows(enc *json.Encoder, f *fr.Frame) error {
	for r := 0; r < f.Rows(); r++ {
		m := f.Row(r)
		for k, v := range m {
			if v == nil {
				delete(m, k)
			}
		}
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

// StreamWriter encodes frames chunk by chunk.
type StreamWriter struct {
	enc *json.Encoder
	out io.WriteCloser
}

func NewStreamWriter(path string) (*StreamWriter, error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	return &StreamWriter{enc: json.NewEncoder(out), out: out}, nil
}

func (s *StreamWriter) Write(f *fr.Frame) error { return encodeRows(s.enc, f) }

func (s *StreamWriter) Close() error { return s.out.Close() }
