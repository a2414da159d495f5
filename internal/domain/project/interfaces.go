package project

import "context"

// Backend is the slice of the remote API the registry depends on.
type Backend interface {
	ListProjects(ctx context.Context) ([]Project, error)
	CreateProject(ctx context.Context, input CreateInput) (*Project, error)
	GetProject(ctx context.Context, id int64) (*Project, error)
}
