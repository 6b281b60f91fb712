package backoff

import "errors"

var (
	ErrInvalidConfig  = errors.New("backoff: invalid configuration")
	ErrInvalidInitial = errors.New("backoff: initial delay must be positive")
	ErrInvalidMax     = errors.New("backoff: max delay must not be lower than initial delay")
)
