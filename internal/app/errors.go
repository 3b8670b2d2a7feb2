package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound        = errors.New("not found")
	ErrNotLoaded       = errors.New("board not loaded")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
