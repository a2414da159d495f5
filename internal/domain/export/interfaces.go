package export

import (
	"context"

	"github.com/scopeai/scopeai/internal/domain/project"
)

// Backend is the slice of the remote API the coordinator depends on.
type Backend interface {
	ExportProject(ctx context.Context, projectID int64, format string) ([]byte, error)
}

// CurrentProject supplies the selected project an export applies to.
type CurrentProject interface {
	Current() *project.Project
}
