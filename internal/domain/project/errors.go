package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates required creation fields are missing.
	ErrInvalidInput = errors.New("invalid project input")
)
