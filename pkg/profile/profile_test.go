package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

func sample(t *testing.T) *fr.Frame {
	t.Helper()
	f, err := fr.FromRecords([]map[string]any{
		{"x": 1.0, "finish": "matte", "ok": true},
		{"x": 2.0, "finish": "glossy", "ok": false},
		{"x": 6.0, "finish": "glossy", "ok": nil},
		{"x": nil, "finish": nil, "ok": true},
	}, "x", "finish", "ok")
	require.NoError(t, err)
	return f
}

func TestNumericStats(t *testing.T) {
	c := Of(sample(t))
	cp, ok := c.Column("x")
	require.True(t, ok)
	assert.Equal(t, 3, cp.Num.Count)
	assert.Equal(t, 1, cp.Num.Nulls)
	assert.Equal(t, 1.0, cp.Num.Min)
	assert.Equal(t, 6.0, cp.Num.Max)
	assert.InDelta(t, 3.0, cp.Num.Mean(), 1e-12)
	assert.InDelta(t, stat.StdDev([]float64{1, 2, 6}, nil), cp.Num.Std(), 1e-12)
}

func TestStringAndBoolStats(t *testing.T) {
	c := Of(sample(t))
	cp, _ := c.Column("finish")
	assert.Equal(t, []string{"glossy", "matte"}, cp.Top(0))
	assert.Equal(t, 2, cp.Str.Distinct())
	b, _ := c.Column("ok")
	assert.Equal(t, 2, b.Bool.True)
	assert.Equal(t, 1, b.Bool.Nulls)
}

func TestReports(t *testing.T) {
	c := NewCollector(sample(t).Schema(), 1)
	c.ConsumeFrame(sample(t))
	c.ConsumeFrame(sample(t))
	txt := c.ReportText()
	assert.True(t, strings.Contains(txt, "- x (float): count=6 nulls=2"), txt)
	assert.Contains(t, txt, `"glossy": 4`)
	js := c.ReportJSON()
	require.Len(t, js.Columns, 3)
	assert.Equal(t, map[string]int{"glossy": 4}, js.Columns[1].Str.Top)
}
