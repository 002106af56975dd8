package csvio

import (
	"encoding/csv"
	"io"

	fr "github.com/wdm0006/imputekit/pkg/frame"
	iox "github.com/wdm0006/imputekit/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with headers. A .gz path is compressed.
func WriteAll(path string, f *fr.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Write encodes f as CSV with a header row onto w.
func Write(w io.Writer, f *fr.Frame, opt WriterOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	if err := cw.Write(f.Names()); err != nil {
		return err
	}
	if err := writeRows(cw, f); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeRows(cw *csv.Writer, f *fr.Frame) error {
	names := f.Names()
	row := make([]string, len(names))
	for r := 0; r < f.Rows(); r++ {
		for c, name := range names {
			row[c], _ = f.String(r, name)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
