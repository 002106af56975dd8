package impute

import (
	"context"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type Constant struct {
	Column string
	// use any; will be coerced per column kind
	Value any
}

func (t *Constant) Name() string { return "impute_constant" }

func (t *Constant) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	switch c := col.(type) {
	case *fr.FloatColumn:
		var vv float64
		switch v := t.Value.(type) {
		case int:
			vv = float64(v)
		case int64:
			vv = float64(v)
		case float64:
			vv = v
		}
		fillNulls(c, func(i int) { c.Set(i, vv) })
	case *fr.IntColumn:
		var vv int64
		switch v := t.Value.(type) {
		case int:
			vv = int64(v)
		case int64:
			vv = v
		case float64:
			vv = int64(v)
		}
		fillNulls(c, func(i int) { c.Set(i, vv) })
	case *fr.StringColumn:
		vv, _ := t.Value.(string)
		fillNulls(c, func(i int) { c.Set(i, vv) })
	case *fr.BoolColumn:
		vv, _ := t.Value.(bool)
		fillNulls(c, func(i int) { c.Set(i, vv) })
	}
	return f, nil
}

func fillNulls(c fr.Column, set func(i int)) {
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			set(i)
		}
	}
}
