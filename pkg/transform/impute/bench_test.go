package impute

import (
	"context"
	"testing"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

func makeLargeFloatFrame(n int) *fr.Frame {
	s := fr.Schema{Columns: []fr.ColumnSchema{{Name: "x", Type: fr.KindFloat, Nullable: true}}}
	f := fr.NewFrame(s)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
	}
	col, _ := f.ColumnByName("x")
	c := col.(*fr.FloatColumn)
	for i := 0; i < n; i += 2 {
		c.Set(i, float64(i%10))
	}
	return f
}

func BenchmarkImputeMean(b *testing.B) {
	base := makeLargeFloatFrame(10000)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		f := base.Clone()
		if _, err := (&Mean{Column: "x"}).Apply(context.Background(), f); err != nil {
			b.Fatal(err)
		}
	}
}
