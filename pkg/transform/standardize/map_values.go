package standardize

import (
	"context"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type MapValues struct {
	Column string
	Map    map[string]string
}

func (t *MapValues) Name() string { return "map_values" }

func (t *MapValues) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	return mapStrings(ctx, f, t.Column, func(v string) string {
		if nv, ok := t.Map[v]; ok {
			return nv
		}
		return v
	})
}
