package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	fr "github.com/wdm0006/imputekit/pkg/frame"
	iox "github.com/wdm0006/imputekit/pkg/io/ioutils"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
	// Kinds pins column kinds by name, overriding inference.
	Kinds map[string]fr.Kind
}

type Reader struct {
	src io.ReadCloser
	r   *csv.Reader
	opt ReaderOptions
	buf [][]string
	// repair/warning counters
	shortRecords int
	longRecords  int
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// Open opens a (possibly gzipped) CSV file, or stdin for "-".
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	r := NewReaderFrom(rc, opt)
	r.src = rc
	return r, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
// A zero Delimiter is sniffed from the first 4KiB.
func NewReaderFrom(in io.Reader, opt ReaderOptions) *Reader {
	br := bufio.NewReader(in)
	rr := csv.NewReader(br)
	if opt.Delimiter == 0 {
		sample, _ := br.Peek(4096)
		d, lazy := sniffDelimiterAndQuotes(sample)
		rr.Comma = d
		rr.LazyQuotes = lazy
	} else {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt}
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.src == nil {
		return nil
	}
	return r.src.Close()
}

// InferSchema reads header (if present) and samples rows to determine column kinds.
func (r *Reader) InferSchema() (fr.Schema, []string, error) {
	var names []string
	rec, err := r.r.Read()
	if err != nil {
		return fr.Schema{}, nil, err
	}
	if r.opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		}
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
		rec, err = r.r.Read()
		if err == io.EOF {
			return schemaFor(names, nil, r.opt.Kinds), names, nil
		}
		if err != nil {
			return fr.Schema{}, nil, err
		}
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	sample := [][]string{rec}
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for i := 1; i < max; i++ {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fr.Schema{}, nil, err
		}
		sample = append(sample, rr)
	}
	// retain sampled rows for subsequent ReadAll
	r.buf = append(r.buf, sample...)
	return schemaFor(names, sample, r.opt.Kinds), names, nil
}

func schemaFor(names []string, sample [][]string, pinned map[string]fr.Kind) fr.Schema {
	kinds := inferKinds(sample, len(names))
	schema := fr.Schema{Columns: make([]fr.ColumnSchema, len(names))}
	for i := range names {
		k := kinds[i]
		if pk, ok := pinned[names[i]]; ok {
			k = pk
		}
		schema.Columns[i] = fr.ColumnSchema{Name: names[i], Type: k, Nullable: true}
	}
	return schema
}

// next returns buffered sample rows first, then reads from the file.
func (r *Reader) next() ([]string, error) {
	if len(r.buf) > 0 {
		rec := r.buf[0]
		r.buf = r.buf[1:]
		return rec, nil
	}
	return r.r.Read()
}

// ReadAll loads the rest of the CSV into a Frame.
func (r *Reader) ReadAll(schema fr.Schema) (*fr.Frame, error) {
	f := fr.NewFrame(schema)
	for {
		rec, err := r.next()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
}

func (r *Reader) appendRecord(f *fr.Frame, rec []string) error {
	schema := f.Schema()
	switch {
	case len(rec) > len(schema.Columns):
		r.longRecords++
		if r.opt.Strict {
			return errors.Errorf("csv long record at row %d: need %d fields, got %d", f.Rows()+1, len(schema.Columns), len(rec))
		}
	case len(rec) < len(schema.Columns):
		r.shortRecords++
		if r.opt.Strict {
			return errors.Errorf("csv short record at row %d: need %d fields, got %d", f.Rows()+1, len(schema.Columns), len(rec))
		}
	}
	// append a null row then set non-empty values
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			break
		}
		setCell(f, row, cs, rec[i])
	}
	return nil
}

func setCell(f *fr.Frame, row int, cs fr.ColumnSchema, raw string) {
	val := strings.ToValidUTF8(strings.TrimSpace(raw), "?")
	if val == "" {
		return
	}
	switch cs.Type {
	case fr.KindFloat:
		if x, err := strconv.ParseFloat(val, 64); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	case fr.KindInt:
		if x, err := strconv.ParseInt(val, 10, 64); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	case fr.KindBool:
		if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			_ = f.SetCell(row, cs.Name, x)
		}
	default:
		_ = f.SetCell(row, cs.Name, val)
	}
}

// Load reads a whole CSV file, inferring its schema.
func Load(path string, opt ReaderOptions) (*fr.Frame, error) {
	r, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	schema, _, err := r.InferSchema()
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return r.ReadAll(schema)
}

func inferKinds(rows [][]string, ncol int) []fr.Kind {
	kinds := make([]fr.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, boolean, str := 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if v == "" {
				continue
			}
			if numre.MatchString(v) {
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
				continue
			}
			lv := strings.ToLower(v)
			if lv == "true" || lv == "false" {
				boolean++
				continue
			}
			str++
		}
		switch {
		case boolean > 0 && num == 0 && str == 0:
			kinds[c] = fr.KindBool
		case num > str+boolean:
			if integer == num {
				kinds[c] = fr.KindInt
			} else {
				kinds[c] = fr.KindFloat
			}
		default:
			kinds[c] = fr.KindString
		}
	}
	return kinds
}

func sniffDelimiterAndQuotes(sample []byte) (rune, bool) {
	if len(sample) == 0 {
		return ',', false
	}
	// only the first line decides; quoted text bodies skew whole-sample counts
	if nl := strings.IndexByte(string(sample), '\n'); nl > 0 {
		sample = sample[:nl]
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := 0
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	quoteCount := 0
	for _, b := range sample {
		if b == '"' {
			quoteCount++
		}
	}
	return rune(best), quoteCount%2 != 0
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
