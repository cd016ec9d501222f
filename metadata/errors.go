package metadata

import (
	"errors"

	"github.com/dot5enko/metatable/schema"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrIndexOutOfRange = errors.New("index out of range")

	// validation errors raised while coercing values against a class property
	ErrTypeMismatch        = schema.ErrTypeMismatch
	ErrArrayLengthMismatch = schema.ErrArrayLengthMismatch
	ErrOutOfRange          = schema.ErrOutOfRange
)
