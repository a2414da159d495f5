package export

import "errors"

var (
	// ErrNoProject indicates export was requested without a selected project.
	ErrNoProject = errors.New("no project selected")
	// ErrUnsupportedFormat indicates an unknown export format.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
