package model

import "time"

// PhaseOverride stores a project's customization of a catalog phase. Phases are
// never deleted from the catalog; projects may rename, hide or reposition them.
type PhaseOverride struct {
	CustomName string `json:"custom_name,omitempty"`
	Hidden     bool   `json:"hidden,omitempty"`
	Position   *int   `json:"position,omitempty"`
}

type Project struct {
	ID              int                      `json:"id"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	SiteType        string                   `json:"site_type"`
	Technology      string                   `json:"technology"`
	ApplicableAreas []string                 `json:"applicable_areas"`
	TargetDate      *time.Time               `json:"target_date"`
	Status          string                   `json:"status"` // active / delivered / cancelled
	PhaseOverrides  map[string]PhaseOverride `json:"phase_overrides"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// Conflict is an open disagreement on a checklist item. Open conflicts block
// delivery and raise the project's risk level.
type Conflict struct {
	ID          int        `json:"id"`
	ProjectID   int        `json:"project_id"`
	ItemID      *int       `json:"item_id"`
	Description string     `json:"description"`
	Status      string     `json:"status"` // open / resolved
	RaisedBy    string     `json:"raised_by"`
	ResolvedBy  string     `json:"resolved_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

const (
	ConflictStatusOpen     = "open"
	ConflictStatusResolved = "resolved"
)

type TeamMember struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
