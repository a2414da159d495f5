package chat

import "context"

// Backend is the slice of the remote API the session depends on.
type Backend interface {
	Suggestions(ctx context.Context) ([]string, error)
	SendChat(ctx context.Context, message string, projectID *int64) (*Reply, error)
}

// ProjectContext supplies the current project id for conversational
// context. The session holds the id only, never the project.
type ProjectContext interface {
	CurrentID() (int64, bool)
}
