// Package api implements the backend REST contract: JSON over HTTP with a
// bearer token on every call except login and register. The domain packages
// declare the narrow interfaces they need; Client satisfies all of them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/scopeai/scopeai/internal/domain/chat"
	"github.com/scopeai/scopeai/internal/domain/project"
	"github.com/scopeai/scopeai/internal/domain/scope"
	"github.com/scopeai/scopeai/internal/domain/scoping"
	"github.com/scopeai/scopeai/internal/session"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the HTTP client for the scoping backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	logger         *slog.Logger
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnUnauthorized registers the hook fired whenever any call returns 401.
// The session store wires its forced-logout path here.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// Login implements session.Backend.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	var payload authPayload
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", creds, &payload, false); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// Register implements session.Backend.
func (c *Client) Register(ctx context.Context, creds session.Credentials) (*session.AuthResult, error) {
	var payload authPayload
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", creds, &payload, false); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// VerifyToken implements session.Backend. The backend exposes no dedicated
// probe, so listing projects stands in for one.
func (c *Client) VerifyToken(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/projects/", nil, nil, true)
}

// ListProjects implements project.Backend.
func (c *Client) ListProjects(ctx context.Context) ([]project.Project, error) {
	var payloads []projectPayload
	if err := c.doJSON(ctx, http.MethodGet, "/projects/", nil, &payloads, true); err != nil {
		return nil, err
	}
	projects := make([]project.Project, 0, len(payloads))
	for _, p := range payloads {
		projects = append(projects, p.toDomain())
	}
	return projects, nil
}

// CreateProject implements project.Backend.
func (c *Client) CreateProject(ctx context.Context, input project.CreateInput) (*project.Project, error) {
	var payload projectPayload
	if err := c.doJSON(ctx, http.MethodPost, "/projects/", input, &payload, true); err != nil {
		return nil, err
	}
	proj := payload.toDomain()
	return &proj, nil
}

// GetProject implements project.Backend and scoping.Backend.
func (c *Client) GetProject(ctx context.Context, id int64) (*project.Project, error) {
	var payload projectPayload
	path := fmt.Sprintf("/projects/%d", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload, true); err != nil {
		return nil, err
	}
	proj := payload.toDomain()
	return &proj, nil
}

// GenerateDraft implements scoping.Backend.
func (c *Client) GenerateDraft(ctx context.Context, input scoping.GenerateInput) (scope.Raw, error) {
	var payload generateDraftPayload
	if err := c.doJSON(ctx, http.MethodPost, "/scoping/generate-draft", input, &payload, true); err != nil {
		return scope.Raw{}, err
	}
	return payload.Scope, nil
}

// ExportProject implements export.Backend. The response is an opaque binary
// artifact; the caller assigns the filename.
func (c *Client) ExportProject(ctx context.Context, projectID int64, format string) ([]byte, error) {
	body := map[string]any{"project_id": projectID, "format": format}
	return c.roundTrip(ctx, http.MethodPost, "/exports/"+format, body, true)
}

// Suggestions implements chat.Backend.
func (c *Client) Suggestions(ctx context.Context) ([]string, error) {
	var payload suggestionsPayload
	if err := c.doJSON(ctx, http.MethodGet, "/chatbot/suggestions", nil, &payload, true); err != nil {
		return nil, err
	}
	return payload.Suggestions, nil
}

// SendChat implements chat.Backend.
func (c *Client) SendChat(ctx context.Context, message string, projectID *int64) (*chat.Reply, error) {
	var reply chat.Reply
	req := chatRequest{Message: message, ProjectID: projectID}
	if err := c.doJSON(ctx, http.MethodPost, "/chatbot/chat", req, &reply, true); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, authed bool) error {
	data, err := c.roundTrip(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, authed bool) ([]byte, error) {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.logger.Info("unauthorized response, forcing logout", "op", op)
		c.onUnauthorized()
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &ServerError{Status: resp.StatusCode, Detail: errorDetail(data, resp.StatusCode)}
	}
	return data, nil
}
