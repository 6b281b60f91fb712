package poller

import "errors"

var (
	ErrNilFetcher     = errors.New("poller: fetcher is required")
	ErrNilProcessor   = errors.New("poller: processor is required")
	ErrAlreadyRunning = errors.New("poller: already running")
	ErrFetchPanic     = errors.New("poller: fetch panicked")
	ErrProcessPanic   = errors.New("poller: process panicked")
)
