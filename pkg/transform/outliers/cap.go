package outliers

import (
	"context"
	"math"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// Cap clamps numeric values into [Min, Max]; either bound may be nil.
type Cap struct {
	Column string
	Min    *float64
	Max    *float64
}

func (t *Cap) Name() string { return "cap_range" }

func (t *Cap) clamp(v float64) float64 {
	if t.Min != nil {
		v = math.Max(v, *t.Min)
	}
	if t.Max != nil {
		v = math.Min(v, *t.Max)
	}
	return v
}

func (t *Cap) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	switch c := col.(type) {
	case *fr.FloatColumn:
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				c.Set(i, t.clamp(v))
			}
		}
	case *fr.IntColumn:
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				c.Set(i, int64(t.clamp(float64(v))))
			}
		}
	}
	return f, nil
}
