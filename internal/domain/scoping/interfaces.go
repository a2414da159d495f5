package scoping

import (
	"context"

	"github.com/scopeai/scopeai/internal/domain/project"
	"github.com/scopeai/scopeai/internal/domain/scope"
)

// GenerateInput carries the scoping parameters for a draft generation.
type GenerateInput struct {
	ProjectID              int64    `json:"project_id"`
	ProjectDescription     string   `json:"project_description"`
	Industry               string   `json:"industry"`
	ProjectType            string   `json:"project_type"`
	TechStack              []string `json:"tech_stack"`
	Complexity             string   `json:"complexity"`
	ComplianceRequirements []string `json:"compliance_requirements"`
}

// Backend is the slice of the remote API the coordinator depends on.
type Backend interface {
	GenerateDraft(ctx context.Context, input GenerateInput) (scope.Raw, error)
	GetProject(ctx context.Context, id int64) (*project.Project, error)
}
