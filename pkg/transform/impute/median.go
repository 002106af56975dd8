package impute

import (
	"context"
	"sort"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type Median struct{ Column string }

func (t *Median) Name() string { return "impute_median" }

func (t *Median) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
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
		med := median(vals)
		fillNulls(c, func(i int) { c.Set(i, med) })
	case *fr.IntColumn:
		vals := intValues(c)
		if len(vals) == 0 {
			return f, nil
		}
		med := int64(median(vals))
		fillNulls(c, func(i int) { c.Set(i, med) })
	}
	return f, nil
}

// median sorts vals in place; even lengths average the middle pair.
func median(vals []float64) float64 {
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		return (vals[mid-1] + vals[mid]) / 2
	}
	return vals[mid]
}
