package logger

import "errors"

var ErrCloseOutput = errors.New("logger: failed to close log output")
