package scoping

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/scopeai/scopeai/internal/domain/project"
	"github.com/scopeai/scopeai/internal/domain/scope"
)

// State is the coordinator's request-cycle state. Succeeded and Failed are
// resting states; a new generation may start from either.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Coordinator drives the generate-draft request cycle: it submits the
// scoping inputs, normalizes the raw result, attaches it to the originating
// project and refetches that project's canonical record. Every generation is
// stamped; a result whose stamp is stale, or whose originating project is no
// longer the current selection, is discarded without touching state.
type Coordinator struct {
	mu       sync.Mutex
	backend  Backend
	registry *project.Registry
	logger   *slog.Logger

	state     State
	gen       uint64
	lastScope *scope.Scope
	lastErr   error
}

// NewCoordinator creates a scope generation coordinator.
func NewCoordinator(backend Backend, registry *project.Registry, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{
		backend:  backend,
		registry: registry,
		logger:   logger,
		state:    StateIdle,
	}
}

// Generate runs one generation cycle for the identified project and returns
// the normalized scope. Concurrent calls for different projects are allowed;
// whichever completes while still current wins, the rest are discarded with
// ErrSuperseded.
func (c *Coordinator) Generate(ctx context.Context, projectID int64, input GenerateInput) (*scope.Scope, error) {
	input.ProjectID = projectID

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = StateGenerating
	c.mu.Unlock()

	raw, err := c.backend.GenerateDraft(ctx, input)
	if err != nil {
		wrapped := fmt.Errorf("generating scope: %w", err)
		c.settle(gen, StateFailed, nil, wrapped)
		return nil, wrapped
	}

	normalized := scope.Normalize(raw)

	if c.stale(gen, projectID) {
		c.logger.Info("discarding stale generation result", "project_id", projectID)
		c.settle(gen, StateIdle, nil, nil)
		return nil, ErrSuperseded
	}
	c.registry.AttachScope(projectID, &normalized)

	// Refetch the canonical record so the server's merged view replaces the
	// locally optimistic one. A refetch failure keeps the optimistic attach.
	if refreshed, err := c.backend.GetProject(ctx, projectID); err != nil {
		c.logger.Warn("project refetch after generation failed", "project_id", projectID, "error", err)
	} else if !c.stale(gen, projectID) {
		c.registry.Replace(*refreshed)
	}

	if c.stale(gen, projectID) {
		c.settle(gen, StateIdle, nil, nil)
		return nil, ErrSuperseded
	}
	c.settle(gen, StateSucceeded, &normalized, nil)
	return &normalized, nil
}

// State reports the coordinator state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generating reports whether a generation is in flight.
func (c *Coordinator) Generating() bool {
	return c.State() == StateGenerating
}

// LastScope returns the most recent successfully generated scope, if any.
func (c *Coordinator) LastScope() *scope.Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastScope
}

// LastError returns the most recent generation failure, if any.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Reset returns the coordinator to idle and drops any remembered result.
// In-flight generations settle as superseded. Used on logout.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = StateIdle
	c.lastScope = nil
	c.lastErr = nil
}

// stale reports whether a generation stamped gen no longer targets current
// state: a newer generation started, or the selection moved off the
// originating project.
func (c *Coordinator) stale(gen uint64, projectID int64) bool {
	c.mu.Lock()
	latest := c.gen
	c.mu.Unlock()
	if gen != latest {
		return true
	}
	current, ok := c.registry.CurrentID()
	return !ok || current != projectID
}

func (c *Coordinator) settle(gen uint64, state State, s *scope.Scope, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.state = state
	c.lastScope = s
	c.lastErr = err
}
