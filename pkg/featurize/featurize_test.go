package featurize

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/wdm0006/imputekit/pkg/errs"
	fr "github.com/wdm0006/imputekit/pkg/frame"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"bright", "red", "2x"}, Tokenize("Bright, RED 2x", Words))
	assert.Equal(t, []string{"a", "b", "ab"}, Tokenize("ab", Chars))
}

func TestTextEncodeNormalised(t *testing.T) {
	f, err := fr.FromRecords([]map[string]any{{"text": "glossy red glossy"}, {"text": nil}})
	require.NoError(t, err)
	tf := NewText("text", 64, Words)
	v, err := tf.Encode(f, 0)
	require.NoError(t, err)
	require.LessOrEqual(t, v.Len(), 2)
	assert.InDelta(t, 1.0, floats.Norm(v.Val, 2), 1e-12)
	for _, i := range v.Idx {
		assert.Less(t, i, 64)
	}
	empty, err := tf.Encode(f, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestTextDeterministic(t *testing.T) {
	f, _ := fr.FromRecords([]map[string]any{{"text": "matte black finish"}})
	a, _ := NewText("text", 128, Chars).Encode(f, 0)
	b, _ := NewText("text", 128, Chars).Encode(f, 0)
	assert.Equal(t, a, b)
}

func TestNumericFitEncode(t *testing.T) {
	f, err := fr.FromRecords([]map[string]any{{"x": 1.0}, {"x": 3.0}, {"x": nil}})
	require.NoError(t, err)
	n := NewNumeric("x")
	require.NoError(t, n.Fit(f))
	v, _ := n.Encode(f, 1)
	assert.InDelta(t, 1/math.Sqrt2, v.Val[0], 1e-12)
	null, _ := n.Encode(f, 2)
	assert.Equal(t, 0.0, null.Val[0])

	back, err := FromState(n.State())
	require.NoError(t, err)
	v2, _ := back.Encode(f, 1)
	assert.Equal(t, v, v2)
}

func TestScaler(t *testing.T) {
	s := FitScaler([]float64{2, 4, 6})
	assert.InDelta(t, 5.0, s.Unscale(s.Scale(5)), 1e-12)
	assert.InDelta(t, 0.0, s.Scale(4), 1e-12)
}

func TestImageEncode(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "red.png")
	img := imaging.New(50, 50, color.NRGBA{R: 155, A: 255})
	require.NoError(t, imaging.Save(img, p))
	require.True(t, IsImagePath(p))
	assert.False(t, IsImagePath(filepath.Join(dir, "missing.png")))
	assert.False(t, IsImagePath("notes.txt"))

	f, _ := fr.FromRecords([]map[string]any{{"img": p}, {"img": nil}})
	im := NewImage("img", 4)
	v, err := im.Encode(f, 0)
	require.NoError(t, err)
	require.Equal(t, 48, v.Len())
	assert.InDelta(t, 155.0/255, v.Val[0], 1e-9)
	assert.Equal(t, 0.0, v.Val[1])

	assert.Equal(t, 1, im.cache.Len())
	null, _ := im.Encode(f, 1)
	assert.Equal(t, 0, null.Len())
}

func TestImageDecodeError(t *testing.T) {
	f, _ := fr.FromRecords([]map[string]any{{"img": "/nonexistent/x.png"}})
	_, err := NewImage("img", 4).Encode(f, 0)
	assert.True(t, errors.Is(err, errs.ErrFileNotFound), "%v", err)

	junk := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))
	f, _ = fr.FromRecords([]map[string]any{{"img": junk}})
	_, err = NewImage("img", 4).Encode(f, 0)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errs.ErrFileNotFound))
}

func TestImageRemovedAfterCaching(t *testing.T) {
	p := filepath.Join(t.TempDir(), "blue.png")
	require.NoError(t, imaging.Save(imaging.New(8, 8, color.NRGBA{B: 155, A: 255}), p))
	f, _ := fr.FromRecords([]map[string]any{{"img": p}})
	im := NewImage("img", 4)
	_, err := im.Encode(f, 0)
	require.NoError(t, err)

	require.NoError(t, os.Remove(p))
	_, err = im.Encode(f, 0)
	assert.True(t, errors.Is(err, errs.ErrFileNotFound), "%v", err)
}

func TestLabelEncoder(t *testing.T) {
	f, _ := fr.FromRecords([]map[string]any{{"y": "red"}, {"y": "blue"}, {"y": nil}, {"y": "red"}})
	e := FitLabels(f, "y")
	assert.Equal(t, []string{"blue", "red"}, e.Classes)
	i, err := e.Encode("red")
	require.NoError(t, err)
	assert.Equal(t, "red", e.Decode(i))
	_, err = e.Encode("green")
	assert.Error(t, err)
}
