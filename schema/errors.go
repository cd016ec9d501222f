package schema

import "errors"

var (
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrArrayLengthMismatch = errors.New("array length does not match componentCount")
	ErrOutOfRange          = errors.New("value out of range")
)
