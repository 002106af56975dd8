package standardize

import (
	"context"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

// mapStrings rewrites every non-null cell of a string column. Missing or
// non-string columns are left untouched.
func mapStrings(ctx context.Context, f *fr.Frame, name string, fn func(string) string) (*fr.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	col, ok := f.ColumnByName(name)
	if !ok {
		return f, nil
	}
	c, ok := col.(*fr.StringColumn)
	if !ok {
		return f, nil
	}
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Get(i); ok {
			c.Set(i, fn(v))
		}
	}
	return f, nil
}
