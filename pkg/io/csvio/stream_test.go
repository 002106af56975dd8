package csvio

import (
	"io"
	"path/filepath"
	"testing"
)

func TestStreamReadCSV(t *testing.T) {
	p := writeTemp(t, "finish.csv", finishCSV)
	sr, err := NewStreamReader(p, ReaderOptions{HasHeader: true, SampleRows: 2}, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = sr.Close() }()
	out := filepath.Join(t.TempDir(), "copy.csv")
	sw, err := NewStreamWriter(out, WriterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	total, chunks := 0, 0
	for {
		f, err := sr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if err := sw.Write(f); err != nil {
			t.Fatal(err)
		}
		total += f.Rows()
		chunks++
	}
	if err := sw.Close(); err != nil {
		t.Fatal(err)
	}
	if total != 3 || chunks != 2 {
		t.Fatalf("expected 3 rows in 2 chunks, got %d in %d", total, chunks)
	}
	back, err := Load(out, ReaderOptions{HasHeader: true})
	if err != nil {
		t.Fatal(err)
	}
	if back.Rows() != 3 {
		t.Fatalf("expected 3 rows written, got %d", back.Rows())
	}
}
