package scoping_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/scopeai/scopeai/internal/api/mocks"
	"github.com/scopeai/scopeai/internal/domain/project"
	"github.com/scopeai/scopeai/internal/domain/scope"
	"github.com/scopeai/scopeai/internal/domain/scoping"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seededRegistry(t *testing.T, projects ...project.Project) *project.Registry {
	t.Helper()
	ctx := context.Background()
	backend := &mocks.ProjectBackend{}
	backend.On("ListProjects", ctx).Return(projects, nil)
	registry := project.NewRegistry(backend, nil)
	require.NoError(t, registry.Refresh(ctx))
	return registry
}

func nestedDraft() scope.Raw {
	return scope.Raw{
		Activities: json.RawMessage(`{"activities":[
			{"name":"Discovery","phase":"Discover","effort_hours":40,"required_roles":["PM"]}
		]}`),
	}
}

func TestCoordinator_GenerateAttachesAndRefetches(t *testing.T) {
	ctx := context.Background()
	registry := seededRegistry(t, project.Project{ID: 1, Name: "Acme", Status: "draft"})
	registry.SetCurrent(1)

	refreshed := &project.Project{ID: 1, Name: "Acme", Status: "scoped"}
	backend := &mocks.ScopingBackend{}
	backend.On("GenerateDraft", ctx, mock.Anything).Return(nestedDraft(), nil)
	backend.On("GetProject", ctx, int64(1)).Return(refreshed, nil)

	coordinator := scoping.NewCoordinator(backend, registry, nil)
	generated, err := coordinator.Generate(ctx, 1, scoping.GenerateInput{ProjectDescription: "x"})
	require.NoError(t, err)

	require.Len(t, generated.Phases, 1)
	require.Equal(t, "Discover", generated.Phases[0].Name)
	require.Equal(t, "Discovery", generated.Phases[0].Activities[0].Name)

	// The server's merged view replaced the optimistic copy.
	require.Equal(t, "scoped", registry.Current().Status)
	require.Equal(t, scoping.StateSucceeded, coordinator.State())
	require.False(t, coordinator.Generating())
}

func TestCoordinator_StampsProjectIDIntoRequest(t *testing.T) {
	ctx := context.Background()
	registry := seededRegistry(t, project.Project{ID: 4})
	registry.SetCurrent(4)

	backend := &mocks.ScopingBackend{}
	backend.On("GenerateDraft", ctx, mock.MatchedBy(func(input scoping.GenerateInput) bool {
		return input.ProjectID == 4
	})).Return(nestedDraft(), nil)
	backend.On("GetProject", ctx, int64(4)).Return(&project.Project{ID: 4}, nil)

	coordinator := scoping.NewCoordinator(backend, registry, nil)
	_, err := coordinator.Generate(ctx, 4, scoping.GenerateInput{})
	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestCoordinator_DiscardsResultWhenSelectionMoved(t *testing.T) {
	ctx := context.Background()
	registry := seededRegistry(t,
		project.Project{ID: 1, Name: "First"},
		project.Project{ID: 2, Name: "Second"},
	)
	registry.SetCurrent(1)

	backend := &mocks.ScopingBackend{}
	backend.On("GenerateDraft", ctx, mock.Anything).Run(func(mock.Arguments) {
		// The user selects a different project mid-generation.
		registry.SetCurrent(2)
	}).Return(nestedDraft(), nil)

	coordinator := scoping.NewCoordinator(backend, registry, nil)
	_, err := coordinator.Generate(ctx, 1, scoping.GenerateInput{})
	require.ErrorIs(t, err, scoping.ErrSuperseded)

	// Neither project picked up the stale scope.
	require.Nil(t, registry.Current().Scope)
	for _, p := range registry.Projects() {
		require.Nil(t, p.Scope)
	}
	backend.AssertNotCalled(t, "GetProject", mock.Anything, mock.Anything)

	// The discarded run settled; a new generation may start immediately.
	require.Equal(t, scoping.StateIdle, coordinator.State())
	require.False(t, coordinator.Generating())
	require.Nil(t, coordinator.LastScope())
	require.NoError(t, coordinator.LastError())
}

func TestCoordinator_SettlesWhenSelectionMovesDuringRefetch(t *testing.T) {
	ctx := context.Background()
	registry := seededRegistry(t,
		project.Project{ID: 1, Name: "First"},
		project.Project{ID: 2, Name: "Second"},
	)
	registry.SetCurrent(1)

	backend := &mocks.ScopingBackend{}
	backend.On("GenerateDraft", ctx, mock.Anything).Return(nestedDraft(), nil)
	backend.On("GetProject", ctx, int64(1)).Run(func(mock.Arguments) {
		registry.SetCurrent(2)
	}).Return(nil, context.DeadlineExceeded)

	coordinator := scoping.NewCoordinator(backend, registry, nil)
	_, err := coordinator.Generate(ctx, 1, scoping.GenerateInput{})
	require.ErrorIs(t, err, scoping.ErrSuperseded)
	require.Equal(t, scoping.StateIdle, coordinator.State())
	require.False(t, coordinator.Generating())
}

func TestCoordinator_FailureLeavesNoPartialScope(t *testing.T) {
	ctx := context.Background()
	registry := seededRegistry(t, project.Project{ID: 1})
	registry.SetCurrent(1)

	backend := &mocks.ScopingBackend{}
	backend.On("GenerateDraft", ctx, mock.Anything).Return(scope.Raw{}, context.DeadlineExceeded)

	coordinator := scoping.NewCoordinator(backend, registry, nil)
	_, err := coordinator.Generate(ctx, 1, scoping.GenerateInput{})
	require.Error(t, err)

	require.Nil(t, registry.Current().Scope)
	require.Equal(t, scoping.StateFailed, coordinator.State())
	require.False(t, coordinator.Generating())
	require.Error(t, coordinator.LastError())
	require.Nil(t, coordinator.LastScope())
}

func TestCoordinator_RefetchFailureKeepsOptimisticAttach(t *testing.T) {
	ctx := context.Background()
	registry := seededRegistry(t, project.Project{ID: 1})
	registry.SetCurrent(1)

	backend := &mocks.ScopingBackend{}
	backend.On("GenerateDraft", ctx, mock.Anything).Return(nestedDraft(), nil)
	backend.On("GetProject", ctx, int64(1)).Return(nil, context.DeadlineExceeded)

	coordinator := scoping.NewCoordinator(backend, registry, nil)
	generated, err := coordinator.Generate(ctx, 1, scoping.GenerateInput{})
	require.NoError(t, err)
	require.Equal(t, generated, registry.Current().Scope)
}

func TestCoordinator_ResetSupersedesInFlight(t *testing.T) {
	ctx := context.Background()
	registry := seededRegistry(t, project.Project{ID: 1})
	registry.SetCurrent(1)

	backend := &mocks.ScopingBackend{}
	coordinator := scoping.NewCoordinator(backend, registry, nil)
	backend.On("GenerateDraft", ctx, mock.Anything).Run(func(mock.Arguments) {
		coordinator.Reset()
	}).Return(nestedDraft(), nil)

	_, err := coordinator.Generate(ctx, 1, scoping.GenerateInput{})
	require.ErrorIs(t, err, scoping.ErrSuperseded)
	require.Equal(t, scoping.StateIdle, coordinator.State())
}
