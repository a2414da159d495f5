package scope

import "encoding/json"

// Raw is a scope payload as the backend returns it, before shape
// reconciliation. Two historical shapes are in circulation: collections
// nested one level under a named sub-key (an "activities" object wrapping an
// activities array) and collections that are the array directly. Fields are
// kept undecoded so Normalize can try both variants.
type Raw struct {
	Activities   json.RawMessage `json:"activities,omitempty"`
	Timeline     json.RawMessage `json:"timeline,omitempty"`
	ResourcePlan json.RawMessage `json:"resource_plan,omitempty"`
	CostEstimate json.RawMessage `json:"cost_estimate,omitempty"`
}

// Empty reports whether the payload carries no scope data at all.
func (r Raw) Empty() bool {
	return !present(r.Activities) && !present(r.Timeline) &&
		!present(r.ResourcePlan) && !present(r.CostEstimate)
}

// Normalize reconciles a raw payload into the canonical Scope. It never
// fails: unrecognized or malformed fields decode to empty collections, and
// activities are partitioned into phases preserving first-seen phase order
// and original item order within each phase.
func Normalize(raw Raw) Scope {
	activities := decodeActivities(raw.Activities)
	return Scope{
		Activities:   activities,
		Phases:       groupByPhase(activities),
		Timeline:     decodeTimeline(raw.Timeline),
		ResourcePlan: decodeResources(raw.ResourcePlan),
		CostEstimate: decodeCostEstimate(raw.CostEstimate),
	}
}

func decodeActivities(raw json.RawMessage) []Activity {
	if !present(raw) {
		return []Activity{}
	}

	// Nested variant: the inner collection wins when present.
	var nested struct {
		Activities []Activity `json:"activities"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Activities != nil {
		return nested.Activities
	}

	// Flat variant: the field is the array itself.
	var flat []Activity
	if err := json.Unmarshal(raw, &flat); err == nil && flat != nil {
		return flat
	}

	return []Activity{}
}

func decodeResources(raw json.RawMessage) []Resource {
	if !present(raw) {
		return []Resource{}
	}

	var nested struct {
		Resources []Resource `json:"resources"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Resources != nil {
		return nested.Resources
	}

	var flat []Resource
	if err := json.Unmarshal(raw, &flat); err == nil && flat != nil {
		return flat
	}

	return []Resource{}
}

func decodeTimeline(raw json.RawMessage) Timeline {
	if !present(raw) {
		return Timeline{}
	}
	var timeline Timeline
	if err := json.Unmarshal(raw, &timeline); err != nil {
		return Timeline{}
	}
	return timeline
}

func decodeCostEstimate(raw json.RawMessage) CostEstimate {
	if !present(raw) {
		return CostEstimate{}
	}
	var estimate CostEstimate
	if err := json.Unmarshal(raw, &estimate); err != nil {
		return CostEstimate{}
	}
	return estimate
}

// groupByPhase is a stable partition, not a sort.
func groupByPhase(activities []Activity) []PhaseGroup {
	var groups []PhaseGroup
	index := make(map[string]int)
	for _, activity := range activities {
		phase := activity.Phase
		if phase == "" {
			phase = OtherPhase
		}
		pos, ok := index[phase]
		if !ok {
			pos = len(groups)
			index[phase] = pos
			groups = append(groups, PhaseGroup{Name: phase})
		}
		groups[pos].Activities = append(groups[pos].Activities, activity)
	}
	return groups
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
