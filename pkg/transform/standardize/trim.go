package standardize

import (
	"context"
	"strings"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type Trim struct{ Column string }

func (t *Trim) Name() string { return "trim" }

func (t *Trim) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	return mapStrings(ctx, f, t.Column, strings.TrimSpace)
}
