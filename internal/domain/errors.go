package domain

import (
	"errors"
	"fmt"
)

// ErrNotReady indicates a family has no usable dataset yet: nothing has
// been downloaded since startup, or the last published file failed to
// open. Callers should retry later.
var ErrNotReady = errors.New("dataset not ready")

// FieldNotFoundError indicates a requested variable does not exist in a
// family's dataset file.
type FieldNotFoundError struct {
	Family Family
	Field  string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not present in %s dataset", e.Field, e.Family)
}

// IsFieldNotFound reports whether err wraps a FieldNotFoundError.
func IsFieldNotFound(err error) bool {
	var fnf *FieldNotFoundError
	return errors.As(err, &fnf)
}
