package validate

import (
	"context"

	"github.com/pkg/errors"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type Range struct {
	Column string
	Min    *float64
	Max    *float64
}

func (t *Range) Name() string { return "validate_range" }

func (t *Range) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !f.Has(t.Column) {
		return f, nil
	}
	var bad int
	for i := 0; i < f.Rows(); i++ {
		v, ok := f.Float(i, t.Column)
		if !ok {
			continue
		}
		if (t.Min != nil && v < *t.Min) || (t.Max != nil && v > *t.Max) {
			bad++
		}
	}
	if bad > 0 {
		return f, errors.Errorf("validate_range: column %s has %d out-of-range values", t.Column, bad)
	}
	return f, nil
}
