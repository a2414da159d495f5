package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/scopeai/scopeai/internal/domain/scope"
)

// Registry holds the known projects and the single current selection. The
// list keeps the backend's order; the backend remains the source of truth
// and the registry is rebuilt from it on reload.
type Registry struct {
	mu      sync.Mutex
	backend Backend
	logger  *slog.Logger

	projects []Project
	current  *int64
}

// NewRegistry creates a project registry.
func NewRegistry(backend Backend, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{backend: backend, logger: logger}
}

// Refresh replaces the list with the backend's current view.
func (r *Registry) Refresh(ctx context.Context) error {
	projects, err := r.backend.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = projects
	if r.current != nil && r.indexLocked(*r.current) < 0 {
		r.current = nil
	}
	return nil
}

// Create validates required fields locally, submits the project, refreshes
// the list and selects the created project as current.
func (r *Registry) Create(ctx context.Context, input CreateInput) (*Project, error) {
	if missingRequired(input) {
		return nil, ErrInvalidInput
	}

	created, err := r.backend.CreateProject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	// A refresh failure keeps the optimistic entry rather than failing the
	// create; the next successful refresh reconciles with the server.
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("project list refresh after create failed", "error", err)
	}

	r.mu.Lock()
	if r.indexLocked(created.ID) < 0 {
		// Prepend: the backend lists newest first, and Recent must see the
		// project that was just created.
		r.projects = append([]Project{*created}, r.projects...)
	}
	id := created.ID
	r.current = &id
	r.mu.Unlock()
	return created, nil
}

// Get fetches a single project's canonical record from the backend.
func (r *Registry) Get(ctx context.Context, id int64) (*Project, error) {
	proj, err := r.backend.GetProject(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

func isNotFound(err error) bool {
	var httpErr interface{ StatusCode() int }
	return errors.As(err, &httpErr) && httpErr.StatusCode() == http.StatusNotFound
}

// Projects returns a copy of the known projects in backend order.
func (r *Registry) Projects() []Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Project, len(r.projects))
	copy(out, r.projects)
	return out
}

// Recent returns up to n projects from the top of the list. The cap is a
// display convenience; the registry itself never reorders.
func (r *Registry) Recent(n int) []Project {
	projects := r.Projects()
	if n >= 0 && len(projects) > n {
		projects = projects[:n]
	}
	return projects
}

// SetCurrent selects a project by id. Unknown ids still select: the project
// may have been created moments ago and the list refresh lost the race.
func (r *Registry) SetCurrent(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = &id
}

// ClearCurrent drops the selection.
func (r *Registry) ClearCurrent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
}

// Current returns a copy of the selected project, or nil.
func (r *Registry) Current() *Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	idx := r.indexLocked(*r.current)
	if idx < 0 {
		return nil
	}
	p := r.projects[idx]
	return &p
}

// CurrentID returns the selected project id, if any.
func (r *Registry) CurrentID() (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return 0, false
	}
	return *r.current, true
}

// AttachScope attaches a generated scope to the identified project. The
// attach is skipped silently when the project is not in the list.
func (r *Registry) AttachScope(id int64, s *scope.Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(id)
	if idx < 0 {
		return
	}
	r.projects[idx].Scope = s
}

// Replace swaps the stored copy of a project with the server's merged view.
func (r *Registry) Replace(p Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(p.ID)
	if idx < 0 {
		r.projects = append(r.projects, p)
		return
	}
	r.projects[idx] = p
}

// Reset clears all projects and the current selection. Used on logout.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = nil
	r.current = nil
}

func (r *Registry) indexLocked(id int64) int {
	for i := range r.projects {
		if r.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func missingRequired(input CreateInput) bool {
	return strings.TrimSpace(input.Name) == "" ||
		strings.TrimSpace(input.Industry) == "" ||
		strings.TrimSpace(input.ProjectType) == "" ||
		strings.TrimSpace(input.Description) == ""
}
