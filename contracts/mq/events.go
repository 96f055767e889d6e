// Package mq defines the event payloads published on the qa.events exchange.
// Consumers in other services decode against these structs, so fields are only
// ever added, never renamed.
package mq

import "time"

// Routing keys on the qa.events topic exchange.
const (
	RoutingChecklistGenerated  = "checklist.generated"
	RoutingChecklistItemUpdate = "checklist.item.updated"
	RoutingConflictChanged     = "conflict.changed"
	RoutingRiskChanged         = "risk.changed"
	RoutingTaskMoved           = "task.moved"
)

type ChecklistGeneratedPayload struct {
	ProjectID  int       `json:"project_id"`
	SiteType   string    `json:"site_type"`
	Technology string    `json:"technology"`
	ItemCount  int       `json:"item_count"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ChecklistItemUpdatedPayload struct {
	ProjectID  int       `json:"project_id"`
	ItemID     int       `json:"item_id"`
	Phase      string    `json:"phase"`
	Status     string    `json:"status"`
	Weight     string    `json:"weight"`
	ActedBy    string    `json:"acted_by"`
	ActingRole string    `json:"acting_role"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ConflictChangedPayload struct {
	ProjectID  int       `json:"project_id"`
	ConflictID int       `json:"conflict_id"`
	ItemID     *int      `json:"item_id,omitempty"`
	Status     string    `json:"status"` // open / resolved
	ActedBy    string    `json:"acted_by"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RiskChangedPayload is published when a recomputation flips the delivery gate
// or moves the risk level.
type RiskChangedPayload struct {
	ProjectID      int       `json:"project_id"`
	Level          string    `json:"level"` // low / medium / high
	CanDeliver     bool      `json:"can_deliver"`
	CompletionRate float64   `json:"completion_rate"`
	Reasons        []string  `json:"reasons"`
	TraceID        string    `json:"trace_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type TaskMovedPayload struct {
	ProjectID  int       `json:"project_id"`
	TaskID     int       `json:"task_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Final      bool      `json:"final"`
	ActedBy    string    `json:"acted_by"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
