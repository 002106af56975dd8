package main

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/wdm0006/imputekit/pkg/errs"
	fr "github.com/wdm0006/imputekit/pkg/frame"
	"github.com/wdm0006/imputekit/pkg/io/csvio"
	"github.com/wdm0006/imputekit/pkg/io/jsonlio"
	"github.com/wdm0006/imputekit/pkg/io/parquetio"
)

func (d DataSpec) format() string {
	if d.Type != "" {
		return strings.ToLower(d.Type)
	}
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(d.Path, ".gz")))
	switch ext {
	case ".jsonl", ".ndjson":
		return "jsonl"
	case ".parquet":
		return "parquet"
	}
	return "csv"
}

func (d DataSpec) csvReader() csvio.ReaderOptions {
	opt := csvio.ReaderOptions{HasHeader: true, SampleRows: 100}
	if d.HasHeader != nil {
		opt.HasHeader = *d.HasHeader
	}
	if d.Delimiter != "" {
		opt.Delimiter = []rune(d.Delimiter)[0]
	}
	return opt
}

func (d DataSpec) csvWriter() csvio.WriterOptions {
	var opt csvio.WriterOptions
	if d.Delimiter != "" {
		opt.Delimiter = []rune(d.Delimiter)[0]
	}
	return opt
}

func (d DataSpec) check() error {
	if d.Path == "" {
		return errs.Newf(errs.ErrConfiguration, "dataset path is empty")
	}
	switch d.format() {
	case "csv", "jsonl", "parquet":
		return nil
	}
	return errs.Newf(errs.ErrConfiguration, "unsupported dataset type %q", d.Type)
}

// readFrame loads a whole dataset.
func readFrame(d DataSpec) (*fr.Frame, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	var (
		f   *fr.Frame
		err error
	)
	switch d.format() {
	case "jsonl":
		f, err = jsonlio.Load(d.Path, jsonlio.ReaderOptions{SampleRows: 100})
	case "parquet":
		f, err = parquetio.Load(d.Path)
	default:
		f, err = csvio.Load(d.Path, d.csvReader())
	}
	if err != nil {
		return nil, errs.FromOS(err, d.Path)
	}
	return f, nil
}

// writeFrame writes f whole, replacing any existing file.
func writeFrame(d DataSpec, f *fr.Frame) error {
	if err := d.check(); err != nil {
		return err
	}
	switch d.format() {
	case "jsonl":
		return jsonlio.WriteAll(d.Path, f)
	case "parquet":
		return parquetio.WriteAll(d.Path, f)
	default:
		return csvio.WriteAll(d.Path, f, d.csvWriter())
	}
}

type chunkSource interface {
	fr.ChunkSource
	io.Closer
}

// openSource reads d in chunks of n rows.
func openSource(d DataSpec, n int) (chunkSource, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	var (
		src chunkSource
		err error
	)
	switch d.format() {
	case "jsonl":
		src, err = jsonlio.NewStreamReader(d.Path, n)
	case "parquet":
		src, err = parquetio.NewStreamReader(d.Path, n)
	default:
		src, err = csvio.NewStreamReader(d.Path, d.csvReader(), n)
	}
	if err != nil {
		return nil, errs.FromOS(err, d.Path)
	}
	return src, nil
}

func openSink(d DataSpec) (fr.ChunkSink, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	switch d.format() {
	case "jsonl":
		return jsonlio.NewStreamWriter(d.Path)
	case "parquet":
		return parquetio.NewStreamWriter(d.Path)
	default:
		return csvio.NewStreamWriter(d.Path, d.csvWriter())
	}
}
