package model

import "time"

// FieldType enumerates the custom field kinds a task configuration may define.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextarea    FieldType = "textarea"
	FieldNumber      FieldType = "number"
	FieldDate        FieldType = "date"
	FieldCheckbox    FieldType = "checkbox"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
	FieldFile        FieldType = "file"
)

// StatusDef is one column of the board. At least one status per configuration
// must be flagged final.
type StatusDef struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Color   string `json:"color"`
	IsFinal bool   `json:"is_final"`
}

type PriorityDef struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// FieldDef describes an ad-hoc field tasks of this project carry. Options is
// only meaningful for select and multiselect fields.
type FieldDef struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// TaskPermissions is the per-role permission matrix entry of a configuration.
type TaskPermissions struct {
	CanCreate       bool `json:"can_create"`
	CanEdit         bool `json:"can_edit"`
	CanDelete       bool `json:"can_delete"`
	CanChangeStatus bool `json:"can_change_status"`
}

// TaskConfiguration customizes a project's board: its statuses, priorities,
// ad-hoc fields and who may do what.
type TaskConfiguration struct {
	ID            int                        `json:"id"`
	ProjectID     int                        `json:"project_id"`
	ModuleEnabled bool                       `json:"module_enabled"`
	Statuses      []StatusDef                `json:"custom_statuses"`
	Priorities    []PriorityDef              `json:"custom_priorities"`
	Fields        []FieldDef                 `json:"custom_fields"`
	Permissions   map[string]TaskPermissions `json:"permissions"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// StatusByKey resolves a status definition by key.
func (c *TaskConfiguration) StatusByKey(key string) (StatusDef, bool) {
	for _, s := range c.Statuses {
		if s.Key == key {
			return s, true
		}
	}
	return StatusDef{}, false
}

// PriorityByKey resolves a priority definition by key.
func (c *TaskConfiguration) PriorityByKey(key string) (PriorityDef, bool) {
	for _, p := range c.Priorities {
		if p.Key == key {
			return p, true
		}
	}
	return PriorityDef{}, false
}

// HasFinalStatus reports whether any status is flagged final.
func (c *TaskConfiguration) HasFinalStatus() bool {
	for _, s := range c.Statuses {
		if s.IsFinal {
			return true
		}
	}
	return false
}

// Task is one card on the project board. Status and priority must reference
// keys of the owning TaskConfiguration.
type Task struct {
	ID           int                    `json:"id"`
	ProjectID    int                    `json:"project_id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Status       string                 `json:"status"`
	Priority     string                 `json:"priority"`
	AssignedTo   *int                   `json:"assigned_to,omitempty"`
	DueDate      *time.Time             `json:"due_date,omitempty"`
	Order        int                    `json:"order"`
	CustomFields map[string]interface{} `json:"custom_fields"`
	CompletedBy  string                 `json:"completed_by,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}
