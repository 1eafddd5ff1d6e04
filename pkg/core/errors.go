package core

import "errors"

// Common errors.
var (
	ErrInvalidID = errors.New("invalid identifier")
	ErrNotFound  = errors.New("document not found")
	ErrReadOnly  = errors.New("store is in read-only mode")
)
