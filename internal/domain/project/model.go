package project

import (
	"time"

	"github.com/scopeai/scopeai/internal/domain/scope"
)

// Complexity is the estimated delivery complexity of a project.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Project is a scoped engagement as the backend returns it. Instances are
// mutated in place when a scope is generated or the record is refreshed, and
// are never deleted client-side.
type Project struct {
	ID                     int64        `json:"id"`
	Name                   string       `json:"name"`
	Description            string       `json:"description"`
	Industry               string       `json:"industry"`
	ProjectType            string       `json:"project_type"`
	TechStack              []string     `json:"tech_stack"`
	Complexity             Complexity   `json:"complexity"`
	ComplianceRequirements []string     `json:"compliance_requirements"`
	DurationWeeks          int          `json:"duration_weeks"`
	Status                 string       `json:"status"`
	Scope                  *scope.Scope `json:"scope,omitempty"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              *time.Time   `json:"updated_at,omitempty"`
}

// CreateInput defines project creation fields as submitted by the user.
type CreateInput struct {
	Name                   string     `json:"name"`
	Description            string     `json:"description"`
	Industry               string     `json:"industry"`
	ProjectType            string     `json:"project_type"`
	TechStack              []string   `json:"tech_stack"`
	Complexity             Complexity `json:"complexity"`
	ComplianceRequirements []string   `json:"compliance_requirements"`
	DurationWeeks          int        `json:"duration_weeks"`
}
