package sample

import "errors"

var (
	ErrNotFound          = errors.New("sample: not found")
	ErrNoFieldsToUpdate  = errors.New("sample: no fields provided for update")
	ErrFailedToCreate    = errors.New("sample: failed to create")
	ErrFailedToUpdate    = errors.New("sample: failed to update")
	ErrFailedToDelete    = errors.New("sample: failed to delete")
	ErrFailedToQuery     = errors.New("sample: failed to query")
	ErrInvalidJSONColumn = errors.New("sample: invalid json column")
)
