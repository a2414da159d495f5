package scope

// OtherPhase is the sentinel phase for activities without a phase attribute.
const OtherPhase = "Other"

// Scope is the canonical generated delivery scope for a project. It is
// produced once by Normalize and treated as immutable afterwards; a
// regeneration replaces it wholesale.
type Scope struct {
	Activities   []Activity   `json:"activities"`
	Phases       []PhaseGroup `json:"phases"`
	Timeline     Timeline     `json:"timeline"`
	ResourcePlan []Resource   `json:"resource_plan"`
	CostEstimate CostEstimate `json:"cost_estimate"`
}

// Activity is a unit of work within a phase.
type Activity struct {
	Name          string   `json:"name"`
	Phase         string   `json:"phase,omitempty"`
	EffortHours   float64  `json:"effort_hours"`
	RequiredRoles []string `json:"required_roles,omitempty"`
}

// PhaseGroup holds the activities of one phase in their original order.
type PhaseGroup struct {
	Name       string     `json:"name"`
	Activities []Activity `json:"activities"`
}

// Timeline describes the overall schedule.
type Timeline struct {
	TotalWeeks float64     `json:"total_weeks"`
	Milestones []Milestone `json:"milestones,omitempty"`
}

// Milestone marks a named point in the timeline.
type Milestone struct {
	Name string  `json:"name"`
	Week float64 `json:"week"`
}

// Resource is one row of the resource plan.
type Resource struct {
	Role       string  `json:"role"`
	TotalHours float64 `json:"total_hours"`
}

// CostEstimate holds the backend-computed cost figures. The client displays
// them as-is and never recalculates.
type CostEstimate struct {
	Breakdown []CostLine `json:"breakdown,omitempty"`
	TotalCost float64    `json:"total_cost"`
}

// CostLine is one role's share of the cost estimate.
type CostLine struct {
	Role  string  `json:"role"`
	Hours float64 `json:"hours"`
	Rate  float64 `json:"rate"`
	Cost  float64 `json:"cost"`
}
