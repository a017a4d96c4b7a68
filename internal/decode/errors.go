package decode

import (
	"errors"
	"fmt"
)

// ErrUnsupportedShape marks a value that cannot be buffered or rendered,
// such as a Go value with no JSON form.
var ErrUnsupportedShape = errors.New("decode: unsupported value shape")

// MissingFieldError reports a required field absent from a payload.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("decode: missing field %q", e.Field)
}

// DuplicateFieldError reports a field that appeared more than once.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("decode: duplicate field %q", e.Field)
}
