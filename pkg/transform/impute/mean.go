package impute

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type Mean struct{ Column string }

func (t *Mean) Name() string { return "impute_mean" }

func (t *Mean) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	switch c := col.(type) {
	case *fr.FloatColumn:
		vals := floatValues(c)
		if len(vals) == 0 {
			return f, nil
		}
		mean := stat.Mean(vals, nil)
		fillNulls(c, func(i int) { c.Set(i, mean) })
	case *fr.IntColumn:
		vals := intValues(c)
		if len(vals) == 0 {
			return f, nil
		}
		mean := math.Round(stat.Mean(vals, nil))
		fillNulls(c, func(i int) { c.Set(i, int64(mean)) })
	}
	return f, nil
}

func floatValues(c *fr.FloatColumn) []float64 {
	vals := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Get(i); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

func intValues(c *fr.IntColumn) []float64 {
	vals := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Get(i); ok {
			vals = append(vals, float64(v))
		}
	}
	return vals
}
