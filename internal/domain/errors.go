package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidColor    = errors.New("invalid color tag")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidColumnID = errors.New("invalid column id")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateID     = errors.New("duplicate id")
)
