package frame_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fr "github.com/wdm0006/imputekit/pkg/frame"
	"github.com/wdm0006/imputekit/pkg/transform/impute"
	"github.com/wdm0006/imputekit/pkg/transform/standardize"
)

func TestPipelineRun(t *testing.T) {
	f, err := fr.FromRecords([]map[string]any{
		{"x": 1.0, "s": "  Foo "},
		{"x": nil, "s": "BAR"},
		{"x": 3.0, "s": nil},
	}, "x", "s")
	require.NoError(t, err)

	p := fr.NewPipeline(&impute.Mean{Column: "x"}).
		Add(&standardize.Trim{Column: "s"}).
		Add(&standardize.Lower{Column: "s"})
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []string{"impute_mean", "trim", "lower"}, p.Steps())

	out, err := p.Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Value(1, "x"))
	assert.Equal(t, "foo", out.Value(0, "s"))
	assert.Nil(t, out.Value(2, "s"))
}

func TestPipelineCancelled(t *testing.T) {
	f, _ := fr.FromRecords([]map[string]any{{"x": 1.0}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fr.NewPipeline(&impute.Mean{Column: "x"}).Run(ctx, f)
	assert.ErrorIs(t, err, context.Canceled)
}
