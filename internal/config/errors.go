package config

import "errors"

var (
	ErrInvalidConfig = errors.New("config: invalid configuration")
	ErrLoadEnvFile   = errors.New("config: failed to load env file")
)
