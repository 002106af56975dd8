package errs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	err := Newf(ErrConfiguration, "output column %q among inputs", "label")
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.False(t, errors.Is(err, ErrTraining))
	assert.Contains(t, err.Error(), `output column "label" among inputs`)
}

func TestWrapfKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrapf(ErrTraining, cause, "epoch %d", 3)
	assert.True(t, errors.Is(err, ErrTraining))
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, Wrapf(ErrTraining, nil, "nothing"))
}

func TestFromOS(t *testing.T) {
	_, err := os.Open(filepath.Join(t.TempDir(), "missing.csv"))
	mapped := FromOS(err, "missing.csv")
	assert.True(t, errors.Is(mapped, ErrFileNotFound))
	assert.Nil(t, FromOS(nil, "x"))
}
