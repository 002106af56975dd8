package standardize

import (
	"context"
	"regexp"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

type RegexReplace struct {
	Column  string
	Pattern string
	Replace string
	re      *regexp.Regexp
}

func (t *RegexReplace) Name() string { return "regex_replace" }

func (t *RegexReplace) Apply(ctx context.Context, f *fr.Frame) (*fr.Frame, error) {
	if t.re == nil {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return f, err
		}
		t.re = re
	}
	return mapStrings(ctx, f, t.Column, func(v string) string {
		return t.re.ReplaceAllString(v, t.Replace)
	})
}
