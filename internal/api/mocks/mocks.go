// Package mocks provides hand-written testify mocks for the backend-facing
// interfaces the domain packages declare.
package mocks

import (
	"context"

	"github.com/scopeai/scopeai/internal/domain/chat"
	"github.com/scopeai/scopeai/internal/domain/project"
	"github.com/scopeai/scopeai/internal/domain/scope"
	"github.com/scopeai/scopeai/internal/domain/scoping"
	"github.com/scopeai/scopeai/internal/session"
	"github.com/stretchr/testify/mock"
)

// ProjectBackend is a mock for project.Backend.
type ProjectBackend struct {
	mock.Mock
}

func (m *ProjectBackend) ListProjects(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectBackend) CreateProject(ctx context.Context, input project.CreateInput) (*project.Project, error) {
	args := m.Called(ctx, input)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectBackend) GetProject(ctx context.Context, id int64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

// ScopingBackend is a mock for scoping.Backend.
type ScopingBackend struct {
	mock.Mock
}

func (m *ScopingBackend) GenerateDraft(ctx context.Context, input scoping.GenerateInput) (scope.Raw, error) {
	args := m.Called(ctx, input)
	if raw, ok := args.Get(0).(scope.Raw); ok {
		return raw, args.Error(1)
	}
	return scope.Raw{}, args.Error(1)
}

func (m *ScopingBackend) GetProject(ctx context.Context, id int64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

// ChatBackend is a mock for chat.Backend.
type ChatBackend struct {
	mock.Mock
}

func (m *ChatBackend) Suggestions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChatBackend) SendChat(ctx context.Context, message string, projectID *int64) (*chat.Reply, error) {
	args := m.Called(ctx, message, projectID)
	if reply, ok := args.Get(0).(*chat.Reply); ok {
		return reply, args.Error(1)
	}
	return nil, args.Error(1)
}

// ExportBackend is a mock for export.Backend.
type ExportBackend struct {
	mock.Mock
}

func (m *ExportBackend) ExportProject(ctx context.Context, projectID int64, format string) ([]byte, error) {
	args := m.Called(ctx, projectID, format)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuthBackend is a mock for session.Backend.
type AuthBackend struct {
	mock.Mock
}

func (m *AuthBackend) Login(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	args := m.Called(ctx, creds)
	if result, ok := args.Get(0).(*session.AuthResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthBackend) Register(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	args := m.Called(ctx, creds)
	if result, ok := args.Get(0).(*session.AuthResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuthBackend) VerifyToken(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// TokenStore is a mock for session.TokenStore.
type TokenStore struct {
	mock.Mock
}

func (m *TokenStore) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *TokenStore) SetToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *TokenStore) DeleteToken(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Backend is a composite mock satisfying app.Backend.
type Backend struct {
	AuthBackend
	unauthorized func()
}

func (m *Backend) OnUnauthorized(fn func()) {
	m.unauthorized = fn
}

// FireUnauthorized simulates a 401 response reaching the client.
func (m *Backend) FireUnauthorized() {
	if m.unauthorized != nil {
		m.unauthorized()
	}
}

func (m *Backend) ListProjects(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) CreateProject(ctx context.Context, input project.CreateInput) (*project.Project, error) {
	args := m.Called(ctx, input)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) GetProject(ctx context.Context, id int64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) GenerateDraft(ctx context.Context, input scoping.GenerateInput) (scope.Raw, error) {
	args := m.Called(ctx, input)
	if raw, ok := args.Get(0).(scope.Raw); ok {
		return raw, args.Error(1)
	}
	return scope.Raw{}, args.Error(1)
}

func (m *Backend) Suggestions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) SendChat(ctx context.Context, message string, projectID *int64) (*chat.Reply, error) {
	args := m.Called(ctx, message, projectID)
	if reply, ok := args.Get(0).(*chat.Reply); ok {
		return reply, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) ExportProject(ctx context.Context, projectID int64, format string) ([]byte, error) {
	args := m.Called(ctx, projectID, format)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}
