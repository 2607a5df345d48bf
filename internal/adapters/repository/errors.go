package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound   = errors.New("no persisted run")
	ErrInvalidRun = errors.New("invalid run")
)
