// Package testbackend runs an in-memory fake of the scoping backend for
// integration tests: the full REST contract over httptest, with bearer-token
// auth and a scripted generation draft.
package testbackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

type userRecord struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	password string
}

type projectRecord struct {
	ID                     int64           `json:"id"`
	Name                   string          `json:"name"`
	Description            string          `json:"description"`
	Industry               string          `json:"industry"`
	ProjectType            string          `json:"project_type"`
	TechStack              []string        `json:"tech_stack"`
	Complexity             string          `json:"complexity"`
	ComplianceRequirements []string        `json:"compliance_requirements"`
	DurationWeeks          int             `json:"duration_weeks"`
	Status                 string          `json:"status"`
	Activities             json.RawMessage `json:"activities,omitempty"`
	Timeline               json.RawMessage `json:"timeline,omitempty"`
	ResourcePlan           json.RawMessage `json:"resource_plan,omitempty"`
	CostEstimate           json.RawMessage `json:"cost_estimate,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              *time.Time      `json:"updated_at"`
}

// TestBackend is an httptest-hosted fake backend. Fields configure scripted
// responses; zero values fall back to built-in defaults.
type TestBackend struct {
	Server *httptest.Server

	// Draft is the raw scope body returned by generate-draft. Defaults to a
	// two-phase nested draft.
	Draft json.RawMessage
	// Suggestions returned by the chatbot endpoint.
	Suggestions []string
	// FailGeneration makes generate-draft answer 500.
	FailGeneration bool

	mu       sync.Mutex
	users    map[string]*userRecord
	tokens   map[string]int64
	projects map[int64]*projectRecord
	nextUser int64
	nextProj int64
}

// New starts a fake backend with one registered account. The server shuts
// down with the test.
func New(t *testing.T) *TestBackend {
	t.Helper()

	tb := &TestBackend{
		Draft:       DefaultDraft(),
		Suggestions: []string{"How long will this take?", "What roles do I need?"},
		users:       make(map[string]*userRecord),
		tokens:      make(map[string]int64),
		projects:    make(map[int64]*projectRecord),
	}
	tb.addUser("jo@example.com", "secret", "Jo Tester")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", tb.handleLogin)
	mux.HandleFunc("POST /auth/register", tb.handleRegister)
	mux.HandleFunc("GET /projects/", tb.authed(tb.handleListProjects))
	mux.HandleFunc("POST /projects/", tb.authed(tb.handleCreateProject))
	mux.HandleFunc("GET /projects/{id}", tb.authed(tb.handleGetProject))
	mux.HandleFunc("POST /scoping/generate-draft", tb.authed(tb.handleGenerateDraft))
	mux.HandleFunc("POST /exports/{format}", tb.authed(tb.handleExport))
	mux.HandleFunc("GET /chatbot/suggestions", tb.authed(tb.handleSuggestions))
	mux.HandleFunc("POST /chatbot/chat", tb.authed(tb.handleChat))

	tb.Server = httptest.NewServer(mux)
	t.Cleanup(tb.Server.Close)
	return tb
}

// URL returns the backend base URL.
func (tb *TestBackend) URL() string {
	return tb.Server.URL
}

// RevokeTokens invalidates every issued token, so the next authenticated
// call answers 401.
func (tb *TestBackend) RevokeTokens() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.tokens = make(map[string]int64)
}

// IssueToken mints a token for the default account, standing in for a
// previous run's stored session.
func (tb *TestBackend) IssueToken() string {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	token := fmt.Sprintf("token-%d", len(tb.tokens)+1)
	tb.tokens[token] = tb.users["jo@example.com"].ID
	return token
}

// DefaultDraft is the scripted generation result: two phases wrapped in the
// nested envelope the backend produces.
func DefaultDraft() json.RawMessage {
	return json.RawMessage(`{
		"activities": {"activities": [
			{"name": "Stakeholder interviews", "phase": "Discovery", "effort_hours": 16, "required_roles": ["Business Analyst"]},
			{"name": "Architecture baseline", "phase": "Discovery", "effort_hours": 24, "required_roles": ["Architect"]},
			{"name": "Core implementation", "phase": "Delivery", "effort_hours": 120, "required_roles": ["Developer"]}
		]},
		"timeline": {"total_weeks": 10, "milestones": [{"name": "Scope signed off", "week": 2}]},
		"resource_plan": {"resources": [
			{"role": "Business Analyst", "total_hours": 16},
			{"role": "Architect", "total_hours": 24},
			{"role": "Developer", "total_hours": 120}
		]},
		"cost_estimate": {"breakdown": [
			{"role": "Developer", "hours": 120, "rate": 95, "cost": 11400}
		], "total_cost": 11400}
	}`)
}

func (tb *TestBackend) addUser(email, password, fullName string) *userRecord {
	tb.nextUser++
	u := &userRecord{ID: tb.nextUser, Email: email, FullName: fullName, password: password}
	tb.users[email] = u
	return u
}

func (tb *TestBackend) issueLocked(userID int64) string {
	token := fmt.Sprintf("token-%d", len(tb.tokens)+1)
	tb.tokens[token] = userID
	return token
}

func (tb *TestBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		tb.mu.Lock()
		_, ok := tb.tokens[token]
		tb.mu.Unlock()
		if token == "" || !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r)
	}
}

func (tb *TestBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed body")
		return
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	user, ok := tb.users[creds.Email]
	if !ok || user.password != creds.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tb.issueLocked(user.ID),
		"user":         user,
	})
}

func (tb *TestBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed body")
		return
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	if _, exists := tb.users[creds.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	user := tb.addUser(creds.Email, creds.Password, creds.FullName)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": tb.issueLocked(user.ID),
		"user":         user,
	})
}

func (tb *TestBackend) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	list := make([]*projectRecord, 0, len(tb.projects))
	for id := int64(1); id <= tb.nextProj; id++ {
		if p, ok := tb.projects[id]; ok {
			list = append(list, p)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (tb *TestBackend) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var input projectRecord
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed body")
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name: field required")
		return
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.nextProj++
	input.ID = tb.nextProj
	input.Status = "created"
	input.CreatedAt = time.Now().UTC()
	tb.projects[input.ID] = &input
	writeJSON(w, http.StatusOK, &input)
}

func (tb *TestBackend) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "id must be an integer")
		return
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	p, ok := tb.projects[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleGenerateDraft merges the scripted draft into the target project the
// way the real backend persists generation results, then returns it wrapped
// in the scope envelope.
func (tb *TestBackend) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	if tb.FailGeneration {
		writeDetail(w, http.StatusInternalServerError, "generation service unavailable")
		return
	}

	var input struct {
		ProjectID int64 `json:"project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed body")
		return
	}

	var draft struct {
		Activities   json.RawMessage `json:"activities"`
		Timeline     json.RawMessage `json:"timeline"`
		ResourcePlan json.RawMessage `json:"resource_plan"`
		CostEstimate json.RawMessage `json:"cost_estimate"`
	}
	if err := json.Unmarshal(tb.Draft, &draft); err != nil {
		writeDetail(w, http.StatusInternalServerError, "bad scripted draft")
		return
	}

	tb.mu.Lock()
	if p, ok := tb.projects[input.ProjectID]; ok {
		p.Activities = draft.Activities
		p.Timeline = draft.Timeline
		p.ResourcePlan = draft.ResourcePlan
		p.CostEstimate = draft.CostEstimate
		p.Status = "scoped"
		now := time.Now().UTC()
		p.UpdatedAt = &now
	}
	tb.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"scope": tb.Draft})
}

func (tb *TestBackend) handleExport(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProjectID int64 `json:"project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed body")
		return
	}

	tb.mu.Lock()
	_, ok := tb.projects[input.ProjectID]
	tb.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	fmt.Fprintf(w, "export:%s:%d", r.PathValue("format"), input.ProjectID)
}

func (tb *TestBackend) handleSuggestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": tb.Suggestions})
}

func (tb *TestBackend) handleChat(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Message   string `json:"message"`
		ProjectID *int64 `json:"project_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"response":         "Echo: " + input.Message,
		"is_scope_related": input.ProjectID != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
