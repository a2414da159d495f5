// Package app is the composition root: it wires the session store, project
// registry and the coordinators together and owns the active-tab state
// machine the views hang off.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/scopeai/scopeai/internal/domain/chat"
	"github.com/scopeai/scopeai/internal/domain/export"
	"github.com/scopeai/scopeai/internal/domain/project"
	"github.com/scopeai/scopeai/internal/domain/scope"
	"github.com/scopeai/scopeai/internal/domain/scoping"
	"github.com/scopeai/scopeai/internal/session"
)

// Tab identifies an application view.
type Tab string

const (
	TabScopeLibrary  Tab = "scope-library"
	TabWorkbench     Tab = "scoping-workbench"
	TabExports       Tab = "exports"
	TabActivityFiles Tab = "activity-files"
	TabIntegrations  Tab = "integrations"
	TabSettings      Tab = "settings"
)

var validTabs = map[Tab]bool{
	TabScopeLibrary:  true,
	TabWorkbench:     true,
	TabExports:       true,
	TabActivityFiles: true,
	TabIntegrations:  true,
	TabSettings:      true,
}

var (
	// ErrUnknownTab indicates a tab outside the fixed set.
	ErrUnknownTab = errors.New("unknown tab")
	// ErrNoProject indicates an operation that needs a current project.
	ErrNoProject = errors.New("no project selected")
)

// Backend is everything the application needs from the remote API.
type Backend interface {
	session.Backend
	project.Backend
	scoping.Backend
	chat.Backend
	export.Backend
	// OnUnauthorized registers the hook fired on any 401 response.
	OnUnauthorized(fn func())
}

// App composes the core components behind a single application state.
type App struct {
	mu     sync.Mutex
	logger *slog.Logger

	Session  *session.Store
	Projects *project.Registry
	Scoping  *scoping.Coordinator
	Chat     *chat.Session
	Exports  *export.Coordinator

	activeTab Tab
	generated *scope.Scope
}

// New wires the application. Logout resets every dependent component, and
// any 401 from the backend funnels into the same forced-logout path.
func New(backend Backend, tokens session.TokenStore, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	registry := project.NewRegistry(backend, logger)
	store := session.NewStore(backend, tokens, logger)

	a := &App{
		logger:    logger,
		Session:   store,
		Projects:  registry,
		Scoping:   scoping.NewCoordinator(backend, registry, logger),
		Chat:      chat.NewSession(backend, registry, logger),
		Exports:   export.NewCoordinator(backend, registry, logger),
		activeTab: TabScopeLibrary,
	}

	store.OnLogout(registry.Reset)
	store.OnLogout(a.Chat.Close)
	store.OnLogout(a.Scoping.Reset)
	store.OnLogout(a.resetView)
	backend.OnUnauthorized(store.ForceLogout)

	return a
}

// ActiveTab returns the current view.
func (a *App) ActiveTab() Tab {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeTab
}

// SetActiveTab switches views.
func (a *App) SetActiveTab(tab Tab) error {
	if !validTabs[tab] {
		return ErrUnknownTab
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.activeTab = tab
	return nil
}

// Login signs in and loads the project list.
func (a *App) Login(ctx context.Context, creds session.Credentials) (*session.User, error) {
	user, err := a.Session.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	a.loadProjects(ctx)
	return user, nil
}

// Register creates an account, signs in and loads the project list.
func (a *App) Register(ctx context.Context, creds session.Credentials) (*session.User, error) {
	user, err := a.Session.Register(ctx, creds)
	if err != nil {
		return nil, err
	}
	a.loadProjects(ctx)
	return user, nil
}

// Restore silently resumes a stored session at startup.
func (a *App) Restore(ctx context.Context) (bool, error) {
	ok, err := a.Session.Restore(ctx)
	if err != nil || !ok {
		return false, err
	}
	a.loadProjects(ctx)
	return true, nil
}

// Logout ends the session and clears all dependent state.
func (a *App) Logout(ctx context.Context) {
	a.Session.Logout(ctx)
}

// CreateProject submits a new project and jumps to the workbench.
func (a *App) CreateProject(ctx context.Context, input project.CreateInput) (*project.Project, error) {
	created, err := a.Projects.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	_ = a.SetActiveTab(TabWorkbench)
	return created, nil
}

// SelectProject makes a project current and switches to the workbench.
func (a *App) SelectProject(id int64) {
	a.Projects.SetCurrent(id)
	_ = a.SetActiveTab(TabWorkbench)
}

// GenerateScope runs a generation for the current project and remembers the
// result for the preview.
func (a *App) GenerateScope(ctx context.Context, input scoping.GenerateInput) (*scope.Scope, error) {
	id, ok := a.Projects.CurrentID()
	if !ok {
		return nil, ErrNoProject
	}

	generated, err := a.Scoping.Generate(ctx, id, input)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.generated = generated
	a.mu.Unlock()
	return generated, nil
}

// PreviewScope returns the freshly generated scope when present, falling
// back to the current project's attached scope.
func (a *App) PreviewScope() *scope.Scope {
	a.mu.Lock()
	generated := a.generated
	a.mu.Unlock()
	if generated != nil {
		return generated
	}
	if current := a.Projects.Current(); current != nil {
		return current.Scope
	}
	return nil
}

// Export produces a downloadable artifact for the current project.
func (a *App) Export(ctx context.Context, format export.Format) (*export.Artifact, error) {
	return a.Exports.Export(ctx, format)
}

func (a *App) loadProjects(ctx context.Context) {
	if err := a.Projects.Refresh(ctx); err != nil {
		a.logger.Warn("loading projects failed", "error", err)
	}
}

func (a *App) resetView() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.activeTab = TabScopeLibrary
	a.generated = nil
}
