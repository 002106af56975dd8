package outliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

func TestCap(t *testing.T) {
	f, err := fr.FromRecords([]map[string]any{{"x": -5.0}, {"x": 2.0}, {"x": 50.0}, {"x": nil}})
	require.NoError(t, err)
	lo, hi := 0.0, 10.0
	_, err = (&Cap{Column: "x", Min: &lo, Max: &hi}).Apply(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.Value(0, "x"))
	assert.Equal(t, 2.0, f.Value(1, "x"))
	assert.Equal(t, 10.0, f.Value(2, "x"))
	assert.Nil(t, f.Value(3, "x"))
}

func TestCapInt(t *testing.T) {
	f, err := fr.FromRecords([]map[string]any{{"n": int64(-3)}, {"n": int64(30)}})
	require.NoError(t, err)
	hi := 9.0
	_, err = (&Cap{Column: "n", Max: &hi}).Apply(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), f.Value(0, "n"))
	assert.Equal(t, int64(9), f.Value(1, "n"))
}
