package gota

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

func TestToDataFrame(t *testing.T) {
	f, err := fr.FromRecords([]map[string]any{
		{"x": 1.0, "finish": "matte"},
		{"x": 3.0, "finish": nil},
	}, "x", "finish")
	require.NoError(t, err)

	df := ToDataFrame(f)
	require.NoError(t, df.Err)
	rows, cols := df.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []string{"x", "finish"}, df.Names())
	assert.InDelta(t, 2.0, df.Col("x").Mean(), 1e-12)
	assert.True(t, df.Col("finish").Elem(1).IsNA())
}

func TestDescribe(t *testing.T) {
	f, err := fr.FromRecords([]map[string]any{{"x": 1.0}, {"x": 2.0}, {"x": 3.0}})
	require.NoError(t, err)
	d := Describe(f)
	require.NoError(t, d.Err)
	assert.Contains(t, d.Names(), "x")
	assert.Contains(t, d.String(), "mean")
}
