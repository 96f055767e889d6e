package model

import "time"

// Weight is the checklist item severity tier driving risk scoring.
type Weight string

const (
	WeightLow      Weight = "low"
	WeightMedium   Weight = "medium"
	WeightHigh     Weight = "high"
	WeightCritical Weight = "critical"
)

// Escalate raises the weight exactly one step. low and critical are unchanged:
// low items never jump tiers and critical is already the ceiling.
func (w Weight) Escalate() Weight {
	switch w {
	case WeightMedium:
		return WeightHigh
	case WeightHigh:
		return WeightCritical
	default:
		return w
	}
}

// Item status values.
const (
	ItemStatusPending    = "pending"
	ItemStatusInProgress = "in_progress"
	ItemStatusCompleted  = "completed"
	ItemStatusConflict   = "conflict"
)

// ChecklistItem is a per-project quality gate item, instantiated from the
// template catalog at project initialization and mutated by users afterwards.
type ChecklistItem struct {
	ID              int        `json:"id"`
	ProjectID       int        `json:"project_id"`
	Phase           string     `json:"phase"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Weight          Weight     `json:"weight"`
	Order           int        `json:"order"`
	Status          string     `json:"status"`
	Technologies    []string   `json:"technologies"`
	SiteTypes       []string   `json:"site_types"`
	CompletedBy     string     `json:"completed_by,omitempty"`
	CompletedByRole string     `json:"completed_by_role,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
