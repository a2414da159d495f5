package scoping

import "errors"

var (
	// ErrSuperseded indicates a generation result was discarded because the
	// current selection or a newer generation replaced it.
	ErrSuperseded = errors.New("generation superseded")
)
