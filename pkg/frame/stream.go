package frame

import (
	"context"
	"errors"
	"io"
)

// ChunkSource yields frames in chunks until io.EOF.
type ChunkSource interface {
	Next() (*Frame, error)
}

// ChunkSink consumes frames, typically writing them out.
type ChunkSink interface {
	Write(*Frame) error
	Close() error
}

// RunStream pulls chunks from src, applies the pipeline, and writes to sink.
// It returns the number of rows written.
func RunStream(ctx context.Context, p *Pipeline, src ChunkSource, sink ChunkSink) (int, error) {
	defer func() { _ = sink.Close() }()
	rows := 0
	for {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		out, err := p.Run(ctx, f)
		if err != nil {
			return rows, err
		}
		if err := sink.Write(out); err != nil {
			return rows, err
		}
		rows += out.Rows()
	}
}
