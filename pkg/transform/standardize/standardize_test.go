package standardize

import (
	"context"
	"testing"

	fr "github.com/wdm0006/imputekit/pkg/frame"
)

func TestTrimAndLower(t *testing.T) {
	s := fr.Schema{Columns: []fr.ColumnSchema{{Name: "s", Type: fr.KindString, Nullable: true}}}
	f := fr.NewFrame(s)
	for i := 0; i < 3; i++ {
		f.AppendNullRow()
	}
	col, _ := f.ColumnByName("s")
	c := col.(*fr.StringColumn)
	c.Set(0, "  Foo  ")
	c.Set(1, "BAR")
	// row 2 null

	ctx := context.Background()
	if _, err := (&Trim{Column: "s"}).Apply(ctx, f); err != nil {
		t.Fatal(err)
	}
	v, _ := c.Get(0)
	if v != "Foo" {
		t.Fatalf("trim failed, got %q", v)
	}

	if _, err := (&Lower{Column: "s"}).Apply(ctx, f); err != nil {
		t.Fatal(err)
	}
	v0, _ := c.Get(0)
	v1, _ := c.Get(1)
	if v0 != "foo" || v1 != "bar" {
		t.Fatalf("lower failed, got %q %q", v0, v1)
	}

	if _, err := (&RegexReplace{Column: "s", Pattern: "o+", Replace: "O"}).Apply(ctx, f); err != nil {
		t.Fatal(err)
	}
	v0, _ = c.Get(0)
	if v0 != "fO" {
		t.Fatalf("regex replace failed, got %q", v0)
	}

	if _, err := (&MapValues{Column: "s", Map: map[string]string{"bar": "baz"}}).Apply(ctx, f); err != nil {
		t.Fatal(err)
	}
	v1, _ = c.Get(1)
	if v1 != "baz" {
		t.Fatalf("map values failed, got %q", v1)
	}
	if !c.IsNull(2) {
		t.Fatal("null cell must stay null")
	}
}

func TestBadPattern(t *testing.T) {
	f, _ := fr.FromRecords([]map[string]any{{"s": "x"}})
	if _, err := (&RegexReplace{Column: "s", Pattern: "("}).Apply(context.Background(), f); err == nil {
		t.Fatal("expected compile error")
	}
}
