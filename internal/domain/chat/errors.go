package chat

import "errors"

var (
	// ErrClosed indicates an operation on a session that is not open.
	ErrClosed = errors.New("chat session closed")
)
