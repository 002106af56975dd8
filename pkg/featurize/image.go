package featurize

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/wdm0006/imputekit/pkg/errs"
	fr "github.com/wdm0006/imputekit/pkg/frame"
)

const (
	DefaultImageSize = 16
	imageCacheSize   = 4096
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true}

// IsImagePath reports whether s has an image extension and names an existing file.
func IsImagePath(s string) bool {
	if !imageExts[strings.ToLower(filepath.Ext(s))] {
		return false
	}
	st, err := os.Stat(s)
	return err == nil && !st.IsDir()
}

// ImageFeaturizer decodes the image a column points at, resizes it to
// Size x Size and flattens the RGB channels into [0, 1]. Decoded pixels are
// cached per file version, so a replaced or removed file is read again.
type ImageFeaturizer struct {
	column string
	size   int
	cache  *lru.Cache[imageKey, []float64]
}

type imageKey struct {
	path  string
	mtime int64
	size  int64
}

func NewImage(column string, size int) *ImageFeaturizer {
	if size <= 0 {
		size = DefaultImageSize
	}
	cache, _ := lru.New[imageKey, []float64](imageCacheSize)
	return &ImageFeaturizer{column: column, size: size, cache: cache}
}

func (im *ImageFeaturizer) Column() string        { return im.column }
func (im *ImageFeaturizer) Modality() Modality    { return Image }
func (im *ImageFeaturizer) Width() int            { return im.size * im.size * 3 }
func (im *ImageFeaturizer) Fit(_ *fr.Frame) error { return nil }

func (im *ImageFeaturizer) State() State {
	return State{Column: im.column, Modality: Image, Size: im.size}
}

func (im *ImageFeaturizer) Encode(f *fr.Frame, row int) (Vector, error) {
	path, ok := f.String(row, im.column)
	if !ok || path == "" {
		return Vector{}, nil
	}
	st, err := os.Stat(path)
	if err != nil {
		return Vector{}, errs.FromOS(err, path)
	}
	key := imageKey{path: path, mtime: st.ModTime().UnixNano(), size: st.Size()}
	if px, ok := im.cache.Get(key); ok {
		return Dense(px), nil
	}
	px, err := im.pixels(path)
	if err != nil {
		return Vector{}, err
	}
	im.cache.Add(key, px)
	return Dense(px), nil
}

func (im *ImageFeaturizer) pixels(path string) ([]float64, error) {
	src, err := imaging.Open(path)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			return nil, errs.FromOS(err, path)
		}
		return nil, errors.Wrapf(err, "image %s", path)
	}
	img := imaging.Resize(src, im.size, im.size, imaging.Box)
	out := make([]float64, 0, im.Width())
	for y := 0; y < im.size; y++ {
		for x := 0; x < im.size; x++ {
			o := img.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				out = append(out, float64(img.Pix[o+c])/255)
			}
		}
	}
	return out, nil
}
