package integration_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/scopeai/scopeai/internal/api"
	"github.com/scopeai/scopeai/internal/app"
	"github.com/scopeai/scopeai/internal/domain/chat"
	"github.com/scopeai/scopeai/internal/domain/export"
	"github.com/scopeai/scopeai/internal/domain/project"
	"github.com/scopeai/scopeai/internal/domain/scoping"
	"github.com/scopeai/scopeai/internal/session"
	"github.com/scopeai/scopeai/internal/testbackend"
	"github.com/scopeai/scopeai/internal/tokenstore"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	backend *testbackend.TestBackend
	tokens  *tokenstore.Store
	client  *api.Client
	app     *app.App
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := testbackend.New(t)

	tokens, err := tokenstore.Open(filepath.Join(t.TempDir(), "scopeai.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tokens.Close() })

	client := api.NewClient(backend.URL(), tokens, nil)
	return &testEnv{
		backend: backend,
		tokens:  tokens,
		client:  client,
		app:     app.New(client, tokens, nil),
	}
}

func (env *testEnv) login(t *testing.T) {
	t.Helper()
	_, err := env.app.Login(context.Background(), session.Credentials{
		Email: "jo@example.com", Password: "secret",
	})
	require.NoError(t, err)
}

func (env *testEnv) createProject(t *testing.T, name string) *project.Project {
	t.Helper()
	created, err := env.app.CreateProject(context.Background(), project.CreateInput{
		Name:        name,
		Description: "CRM migration for a retail chain",
		Industry:    "Retail",
		ProjectType: "web_application",
	})
	require.NoError(t, err)
	return created
}

func TestScopingFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.login(t)
	require.True(t, env.app.Session.Authenticated())
	require.Equal(t, "Jo Tester", env.app.Session.CurrentUser().FullName)

	created := env.createProject(t, "Acme")
	require.Equal(t, app.TabWorkbench, env.app.ActiveTab())
	id, ok := env.app.Projects.CurrentID()
	require.True(t, ok)
	require.Equal(t, created.ID, id)

	generated, err := env.app.GenerateScope(ctx, scopingInput())
	require.NoError(t, err)
	require.Len(t, generated.Activities, 3)
	require.Len(t, generated.Phases, 2)
	require.Equal(t, "Discovery", generated.Phases[0].Name)
	require.Len(t, generated.Phases[0].Activities, 2)
	require.Equal(t, "Delivery", generated.Phases[1].Name)
	require.InDelta(t, 11400, generated.CostEstimate.TotalCost, 0.001)

	// The canonical refetch replaced the optimistic record.
	current := env.app.Projects.Current()
	require.Equal(t, "scoped", current.Status)
	require.NotNil(t, current.Scope)
	require.Len(t, current.Scope.Activities, 3)

	require.Equal(t, generated, env.app.PreviewScope())
}

func TestGenerationFailureLeavesProjectUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.backend.FailGeneration = true

	env.login(t)
	env.createProject(t, "Acme")

	_, err := env.app.GenerateScope(context.Background(), scopingInput())
	require.Error(t, err)

	current := env.app.Projects.Current()
	require.Nil(t, current.Scope)
	require.Equal(t, "created", current.Status)
	require.Nil(t, env.app.PreviewScope())
}

func TestExportFlow(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.createProject(t, "Acme Launch")

	artifact, err := env.app.Export(context.Background(), export.FormatExcel)
	require.NoError(t, err)
	require.Contains(t, artifact.Filename, "scopeai_Acme-Launch_")
	require.Contains(t, artifact.Filename, ".xlsx")
	require.Equal(t, []byte("export:excel:1"), artifact.Data)

	path, err := artifact.WriteFile(t.TempDir())
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestChatFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.login(t)
	env.createProject(t, "Acme")

	env.app.Chat.Open(ctx)
	require.Equal(t, []string{"How long will this take?", "What roles do I need?"},
		env.app.Chat.Suggestions())

	reply, err := env.app.Chat.Send(ctx, "How long?")
	require.NoError(t, err)
	require.Equal(t, "Echo: How long?", reply.Text)
	// The current project rode along as context.
	require.True(t, reply.ScopeRelated)

	transcript := env.app.Chat.Transcript()
	require.Len(t, transcript, 3)
	require.Equal(t, chat.RoleAssistant, transcript[0].Role)
	require.Equal(t, chat.RoleUser, transcript[1].Role)
}

func TestSessionRestoreAcrossRestart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.login(t)
	env.createProject(t, "Acme")

	// A fresh app over the same token store stands in for a restart.
	reborn := app.New(env.client, env.tokens, nil)
	ok, err := reborn.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, reborn.Session.Authenticated())
	require.Len(t, reborn.Projects.Projects(), 1)
	// Identity is unknown until the next login.
	require.Nil(t, reborn.Session.CurrentUser())
}

func TestRevokedTokenForcesLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.login(t)
	env.createProject(t, "Acme")

	env.backend.RevokeTokens()
	require.Error(t, env.app.Projects.Refresh(ctx))

	require.False(t, env.app.Session.Authenticated())
	require.Empty(t, env.app.Projects.Projects())
	require.Equal(t, app.TabScopeLibrary, env.app.ActiveTab())

	token, err := env.tokens.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestLogoutClearsStoredToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.login(t)
	env.app.Logout(ctx)

	token, err := env.tokens.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	ok, err := env.app.Restore(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func scopingInput() scoping.GenerateInput {
	return scoping.GenerateInput{
		ProjectDescription:     "CRM migration for a retail chain",
		Industry:               "Retail",
		ProjectType:            "web_application",
		TechStack:              []string{"go", "postgres"},
		Complexity:             "medium",
		ComplianceRequirements: []string{"GDPR"},
	}
}
