package jsonlio

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `{"x": 1.5, "label": "red", "ok": true}
{"x": 2, "label": "green"}
{"x": null, "label": "blue", "ok": false}
`

func writeSample(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sample.jsonl")
	if err := os.WriteFile(p, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestJSONLInferAndRead(t *testing.T) {
	f, err := Load(writeSample(t), ReaderOptions{SampleRows: 10})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Names(); len(got) != 3 || got[0] != "label" {
		t.Fatalf("expected sorted columns, got %v", got)
	}
	if f.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", f.Rows())
	}
	if v, ok := f.Float(0, "x"); !ok || v != 1.5 {
		t.Fatalf("x[0] = %v", v)
	}
	if f.Value(2, "x") != nil || f.Value(1, "ok") != nil {
		t.Fatal("null and missing keys must be null cells")
	}
}

func TestJSONLWriteAll(t *testing.T) {
	f, err := Load(writeSample(t), ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out.jsonl")
	if err := WriteAll(out, f); err != nil {
		t.Fatal(err)
	}
	back, err := Load(out, ReaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if back.Rows() != 3 {
		t.Fatalf("expected 3 rows, got %d", back.Rows())
	}
}
