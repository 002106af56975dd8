package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/wdm0006/imputekit/pkg/errs"
)

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a reader.
// Gzip input is detected by extension or magic bytes and decompressed.
// A missing file yields errs.ErrFileNotFound.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		br := bufio.NewReader(os.Stdin)
		if isGzip(br) {
			zr, err := gzip.NewReader(br)
			if err != nil {
				return nil, err
			}
			return zr, nil
		}
		return io.NopCloser(br), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.FromOS(err, path)
	}
	br := bufio.NewReader(f)
	if filepath.Ext(path) == ".gz" || isGzip(br) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return f.Close() }}, nil
	}
	return readCloser{Reader: br, closeFn: f.Close}, nil
}

func isGzip(br *bufio.Reader) bool {
	b, err := br.Peek(2)
	return err == nil && len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

// CreateMaybeCompressed creates a file (or stdout if path is "-") and
// returns a writer. If the path ends in .gz, the writer is gzip compressed.
// Parent directories are created as needed.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		return nopWriteCloser{Writer: bufio.NewWriter(os.Stdout)}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		zw := gzip.NewWriter(f)
		return writeCloser{Writer: zw, closeFn: func() error {
			if err := zw.Close(); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		}}, nil
	}
	return writeCloser{Writer: bufio.NewWriter(f), closeFn: f.Close}, nil
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error {
	if bw, ok := w.Writer.(*bufio.Writer); ok {
		if err := bw.Flush(); err != nil {
			_ = w.closeFn()
			return err
		}
	}
	return w.closeFn()
}

type nopWriteCloser struct{ io.Writer }

func (n nopWriteCloser) Close() error {
	if bw, ok := n.Writer.(*bufio.Writer); ok {
		return bw.Flush()
	}
	return nil
}
