package ioutils

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/imputekit/pkg/errs"
)

func TestGzipRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "data.csv.gz")
	w, err := CreateMaybeCompressed(p)
	require.NoError(t, err)
	_, err = io.WriteString(w, "a,b\n1,2\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenMaybeCompressed(p)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(b))
}

func TestOpenMissing(t *testing.T) {
	_, err := OpenMaybeCompressed(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrFileNotFound))
}
