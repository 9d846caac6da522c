package visual

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrTypeMismatch    = errors.New("property type mismatch")
	ErrNotFound        = errors.New("callback not registered")
)
