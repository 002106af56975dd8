package frame

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecordsKeepsOrderAndKinds(t *testing.T) {
	recs := []map[string]any{
		{"title": "a", "n": 1.5, "k": int64(2)},
		{"title": nil, "n": 2.5, "k": int64(3)},
	}
	f, err := FromRecords(recs, "title", "n", "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "n", "k"}, f.Names())
	assert.Equal(t, 2, f.Rows())

	cs, ok := f.Schema().Lookup("n")
	require.True(t, ok)
	assert.Equal(t, KindFloat, cs.Type)
	cs, _ = f.Schema().Lookup("k")
	assert.Equal(t, KindInt, cs.Type)

	assert.Nil(t, f.Value(1, "title"))
	v, ok := f.Float(1, "k")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestFromRecordsRejectsRaggedRecords(t *testing.T) {
	recs := []map[string]any{
		{"a": "x", "b": "y"},
		{"a": "x"},
	}
	_, err := FromRecords(recs)
	require.Error(t, err)

	recs = []map[string]any{
		{"a": "x", "b": "y"},
		{"a": "x", "c": "z"},
	}
	_, err = FromRecords(recs)
	require.Error(t, err)
}

func TestTakeCopiesRows(t *testing.T) {
	f := makeFrame(10)
	sub := f.Take([]int{7, 2})
	require.Equal(t, 2, sub.Rows())
	a, _ := sub.Float(0, "a")
	assert.Equal(t, 7.0, a)

	_ = sub.SetCell(0, "a", 99.0)
	orig, _ := f.Float(7, "a")
	assert.Equal(t, 7.0, orig, "Take must not share storage")
}

func TestAddColumnAndSelect(t *testing.T) {
	f := makeFrame(3)
	c := NewStringColumn("extra", 3)
	c.Set(1, "hello")
	require.NoError(t, f.AddColumn(c, true))
	assert.Equal(t, []string{"a", "b", "s", "extra"}, f.Names())
	assert.Error(t, f.AddColumn(NewStringColumn("extra", 3), true))
	assert.Error(t, f.AddColumn(NewStringColumn("short", 2), true))

	sel, err := f.Select("extra", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"extra", "a"}, sel.Names())
	s, ok := sel.String(1, "extra")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	_, err = f.Select("missing")
	assert.Error(t, err)
}

func TestSetCellTypeErrors(t *testing.T) {
	f := makeFrame(1)
	assert.Error(t, f.SetCell(0, "a", "text"))
	assert.Error(t, f.SetCell(0, "s", 1.0))
	assert.Error(t, f.SetCell(0, "nope", 1.0))
	require.NoError(t, f.SetCell(0, "a", nil))
	assert.Nil(t, f.Value(0, "a"))
}

type sliceSource struct {
	chunks []*Frame
}

func (s *sliceSource) Next() (*Frame, error) {
	if len(s.chunks) == 0 {
		return nil, io.EOF
	}
	f := s.chunks[0]
	s.chunks = s.chunks[1:]
	return f, nil
}

type countSink struct {
	rows   int
	closed bool
}

func (c *countSink) Write(f *Frame) error { c.rows += f.Rows(); return nil }
func (c *countSink) Close() error         { c.closed = true; return nil }

func TestRunStream(t *testing.T) {
	src := &sliceSource{chunks: []*Frame{makeFrame(3), makeFrame(4)}}
	sink := &countSink{}
	n, err := RunStream(context.Background(), NewPipeline(&noopTransform{}), src, sink)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, 7, sink.rows)
	assert.True(t, sink.closed)
}

func TestDropColumn(t *testing.T) {
	f, err := FromRecords([]map[string]any{{"a": 1.0, "b": "x", "c": true}}, "a", "b", "c")
	require.NoError(t, err)
	require.NoError(t, f.DropColumn("b"))
	assert.Equal(t, []string{"a", "c"}, f.Names())
	assert.Equal(t, true, f.Value(0, "c"))
	assert.Error(t, f.DropColumn("b"))
}
