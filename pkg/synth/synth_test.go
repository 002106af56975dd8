package synth

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinish(t *testing.T) {
	f := Finish(100, 1)
	require.Equal(t, 100, f.Rows())
	assert.Equal(t, []string{"title", "text", "finish"}, f.Names())
	for i := 0; i < f.Rows(); i++ {
		fin, _ := f.String(i, "finish")
		text, _ := f.String(i, "text")
		assert.Contains(t, text, fin+" finish")
	}
	assert.Equal(t, Finish(10, 4).Records(), Finish(10, 4).Records())
}

func TestStrings(t *testing.T) {
	f := Strings("string_feature", "label", 50, 3, 10, 100, 2)
	for i := 0; i < f.Rows(); i++ {
		s, _ := f.String(i, "string_feature")
		l, _ := f.String(i, "label")
		assert.Len(t, strings.Fields(s), 10)
		assert.Contains(t, strings.Fields(s), l)
	}
}

func TestNumeric(t *testing.T) {
	f := Numeric(200, 3)
	for i := 0; i < f.Rows(); i++ {
		x, _ := f.Float(i, "x")
		y, _ := f.Float(i, "*2")
		assert.LessOrEqual(t, math.Abs(x), math.Pi)
		assert.InDelta(t, 2*x, y, 0.6)
	}
}

func TestImages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "imgs")
	f, err := Images(dir, 32, 5)
	require.NoError(t, err)
	require.Equal(t, 32, f.Rows())
	for i := 0; i < f.Rows(); i++ {
		p, _ := f.String(i, "image_files")
		l, _ := f.String(i, "label")
		assert.Equal(t, filepath.Join(dir, l+".png"), p)
	}
	img, err := imaging.Open(filepath.Join(dir, "green.png"))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	r, g, b, _ := img.At(10, 10).RGBA()
	assert.Equal(t, []uint32{0, 155, 0}, []uint32{r >> 8, g >> 8, b >> 8})
	assert.Error(t, WriteImage(filepath.Join(dir, "x.png"), "purple"))
}
