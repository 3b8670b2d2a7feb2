package board

import "errors"

var (
	ErrDragActive    = errors.New("drag in progress")
	ErrInvalidSource = errors.New("invalid drag source")
	ErrInvalidTarget = errors.New("invalid drop target")
	ErrInvalidPolicy = errors.New("invalid drift policy")
)
