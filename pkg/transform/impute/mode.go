package impute

import (
	"context"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// Mode fills nulls with the most frequent value; ties go to the value that
// reached the winning count first.
type Mode struct{ Column string }

func (t *Mode) Name() string { return "impute_mode" }

func (t *Mode) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	switch c := col.(type) {
	case *fr.StringColumn:
		if best, ok := mode(c.Len(), c.Get); ok {
			fillNulls(c, func(i int) { c.Set(i, best) })
		}
	case *fr.IntColumn:
		if best, ok := mode(c.Len(), c.Get); ok {
			fillNulls(c, func(i int) { c.Set(i, best) })
		}
	case *fr.BoolColumn:
		if best, ok := mode(c.Len(), c.Get); ok {
			fillNulls(c, func(i int) { c.Set(i, best) })
		}
	}
	return f, nil
}

func mode[T comparable](n int, get func(int) (T, bool)) (T, bool) {
	counts := map[T]int{}
	var best T
	bestc := 0
	for i := 0; i < n; i++ {
		v, ok := get(i)
		if !ok {
			continue
		}
		counts[v]++
		if counts[v] > bestc {
			bestc = counts[v]
			best = v
		}
	}
	return best, bestc > 0
}
