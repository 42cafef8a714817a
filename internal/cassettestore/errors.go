package cassettestore

import (
	"errors"
	"fmt"
)

// LoadError wraps any failure to read or decode a cassette snapshot:
// a missing file (without CreateIfMissing), an I/O error, or malformed
// content. The original cause is preserved for errors.Is/As chains.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load cassette %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError wraps any failure to serialize or write a cassette
// snapshot, with the same cause-preservation contract as LoadError.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save cassette %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// IsLoadError returns true if the error is a cassette load failure.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// IsSaveError returns true if the error is a cassette save failure.
func IsSaveError(err error) bool {
	var se *SaveError
	return errors.As(err, &se)
}
