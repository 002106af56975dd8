// Package errs holds the failure taxonomy shared by loaders, the splitter and
// the imputer. Producers wrap a sentinel with context; callers match with
// errors.Is.
package errs

import (
	"os"

	"github.com/pkg/errors"
)

var (
	// ErrFileNotFound reports a missing dataset, image or artifact path.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidRatio reports a bad split configuration.
	ErrInvalidRatio = errors.New("invalid split ratio")
	// ErrTraining reports malformed columns or degenerate training data.
	ErrTraining = errors.New("training error")
	// ErrConfiguration reports conflicting or missing imputer settings.
	ErrConfiguration = errors.New("configuration error")
)

type wrapped struct {
	kind  error
	cause error
	msg   string
}

func (w *wrapped) Error() string {
	if w.cause != nil {
		return w.msg + ": " + w.kind.Error() + ": " + w.cause.Error()
	}
	return w.msg + ": " + w.kind.Error()
}

func (w *wrapped) Is(target error) bool { return target == w.kind }
func (w *wrapped) Unwrap() error        { return w.cause }

// Newf returns an error of the given kind with a formatted message.
func Newf(kind error, format string, args ...any) error {
	return errors.WithStack(&wrapped{kind: kind, msg: errors.Errorf(format, args...).Error()})
}

// Wrapf tags cause with kind. Both remain reachable through errors.Is.
func Wrapf(kind, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return errors.WithStack(&wrapped{kind: kind, cause: cause, msg: errors.Errorf(format, args...).Error()})
}

// FromOS maps a not-exist filesystem error to ErrFileNotFound and wraps any
// other error with path context.
func FromOS(err error, path string) error {
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
		return Wrapf(ErrFileNotFound, err, "%s", path)
	}
	return errors.Wrapf(err, "%s", path)
}
