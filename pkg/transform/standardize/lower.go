package standardize

import (
	"context"
	"strings"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type Lower struct{ Column string }

func (t *Lower) Name() string { return "lower" }

func (t *Lower) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	return mapStrings(ctx, f, t.Column, strings.ToLower)
}
