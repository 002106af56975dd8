package parquetio

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

func makeFrame(rows int) *fr.Frame {
	s := fr.Schema{Columns: []fr.ColumnSchema{
		{Name: "a", Type: fr.KindFloat, Nullable: true},
		{Name: "b", Type: fr.KindInt, Nullable: true},
		{Name: "s", Type: fr.KindString, Nullable: true},
	}}
	f := fr.NewFrame(s)
	for i := 0; i < rows; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "a", float64(i%100)+0.5)
		_ = f.SetCell(i, "b", int64(i%10))
		if i%3 != 0 {
			_ = f.SetCell(i, "s", "row")
		}
	}
	return f
}

func TestWriteAllLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.parquet")
	require.NoError(t, WriteAll(path, makeFrame(25)))

	back, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 25, back.Rows())
	require.Equal(t, []string{"a", "b", "s"}, back.Names())

	v, ok := back.Float(7, "a")
	require.True(t, ok)
	require.Equal(t, 7.5, v)
	require.Nil(t, back.Value(3, "s"))
	require.Equal(t, "row", back.Value(4, "s"))
}

func TestStreamRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.parquet")
	require.NoError(t, WriteAll(in, makeFrame(10)))

	src, err := NewStreamReader(in, 4)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	out := filepath.Join(dir, "out.parquet")
	sink, err := NewStreamWriter(out)
	require.NoError(t, err)
	n, err := fr.RunStream(context.Background(), fr.NewPipeline(), src, sink)
	require.NoError(t, err)
	require.Equal(t, 10, n)

	back, err := Load(out)
	require.NoError(t, err)
	require.Equal(t, 10, back.Rows())
}

func BenchmarkParquetWrite(b *testing.B) {
	f := makeFrame(50000)
	path := filepath.Join(b.TempDir(), "bench.parquet")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WriteAll(path, f)
	}
}
