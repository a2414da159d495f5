package api

import (
	"encoding/json"
	"time"

	"github.com/scopeai/scopeai/internal/domain/project"
	"github.com/scopeai/scopeai/internal/domain/scope"
	"github.com/scopeai/scopeai/internal/session"
)

// userPayload mirrors the backend user object.
type userPayload struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// authPayload mirrors the login/register response.
type authPayload struct {
	AccessToken string      `json:"access_token"`
	User        userPayload `json:"user"`
}

func (p authPayload) toDomain() *session.AuthResult {
	return &session.AuthResult{
		Token: p.AccessToken,
		User: session.User{
			ID:       p.User.ID,
			Email:    p.User.Email,
			FullName: p.User.FullName,
		},
	}
}

// projectPayload mirrors the backend project record. Scope fields stay raw
// so the normalizer can reconcile legacy shapes.
type projectPayload struct {
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
	Activities             json.RawMessage `json:"activities"`
	Timeline               json.RawMessage `json:"timeline"`
	ResourcePlan           json.RawMessage `json:"resource_plan"`
	CostEstimate           json.RawMessage `json:"cost_estimate"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              *time.Time      `json:"updated_at"`
}

func (p projectPayload) toDomain() project.Project {
	proj := project.Project{
		ID:                     p.ID,
		Name:                   p.Name,
		Description:            p.Description,
		Industry:               p.Industry,
		ProjectType:            p.ProjectType,
		TechStack:              p.TechStack,
		Complexity:             project.Complexity(p.Complexity),
		ComplianceRequirements: p.ComplianceRequirements,
		DurationWeeks:          p.DurationWeeks,
		Status:                 p.Status,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}

	raw := scope.Raw{
		Activities:   p.Activities,
		Timeline:     p.Timeline,
		ResourcePlan: p.ResourcePlan,
		CostEstimate: p.CostEstimate,
	}
	if !raw.Empty() {
		normalized := scope.Normalize(raw)
		proj.Scope = &normalized
	}
	return proj
}

// generateDraftPayload mirrors the generate-draft response envelope.
type generateDraftPayload struct {
	Scope scope.Raw `json:"scope"`
}

// suggestionsPayload mirrors the chatbot suggestions response.
type suggestionsPayload struct {
	Suggestions []string `json:"suggestions"`
}

// chatRequest is the chat call body.
type chatRequest struct {
	Message   string `json:"message"`
	ProjectID *int64 `json:"project_id,omitempty"`
}
