package validate

import (
	"context"

	"github.com/pkg/errors"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type InSet struct {
	Column string
	Values map[string]struct{}
}

func NewInSet(col string, vals []string) *InSet {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return &InSet{Column: col, Values: m}
}

func (t *InSet) Name() string { return "validate_in" }

func (t *InSet) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	sc, ok := col.(*fr.StringColumn)
	if !ok {
		return f, nil
	}
	var bad int
	for i := 0; i < sc.Len(); i++ {
		v, ok := sc.Get(i)
		if !ok {
			continue
		}
		if _, ok := t.Values[v]; !ok {
			bad++
		}
	}
	if bad > 0 {
		return f, errors.Errorf("validate_in: column %s has %d values outside allowed set", t.Column, bad)
	}
	return f, nil
}
