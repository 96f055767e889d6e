// Package taskflow implements the per-project task board: dynamic statuses,
// priorities and custom fields, a role permission matrix, and optimistic
// mutations reconciled against the store.
package taskflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"checklist-service/internal/model"
	"checklist-service/pkg/metrics"
	"checklist-service/pkg/rbac"
)

// TaskStore is the slice of the task repository the engine needs.
type TaskStore interface {
	GetByID(ctx context.Context, taskID int) (*model.Task, error)
	ListByProject(ctx context.Context, projectID int) ([]model.Task, error)
	CountByProject(ctx context.Context, projectID int) (int, error)
	Insert(ctx context.Context, task *model.Task) (int, error)
	Update(ctx context.Context, task *model.Task) error
	ReorderTasks(ctx context.Context, projectID int, status string, orderedIDs []int) error
	Delete(ctx context.Context, taskID int) error
}

// ConfigStore persists per-project board configurations. GetByProject returns
// pgx.ErrNoRows when the project has none yet.
type ConfigStore interface {
	GetByProject(ctx context.Context, projectID int) (*model.TaskConfiguration, error)
	Insert(ctx context.Context, cfg *model.TaskConfiguration) (int, error)
	Update(ctx context.Context, cfg *model.TaskConfiguration) error
}

// Engine coordinates board mutations: it resolves the project configuration,
// enforces the permission matrix, validates custom fields and applies changes
// optimistically through the board cache.
type Engine struct {
	tasks   TaskStore
	configs ConfigStore
	cache   *BoardCache
	logger  *zap.Logger
}

func NewEngine(tasks TaskStore, configs ConfigStore, logger *zap.Logger) *Engine {
	return &Engine{
		tasks:   tasks,
		configs: configs,
		cache:   NewBoardCache(),
		logger:  logger,
	}
}

// DefaultConfiguration is the board a project gets on first use.
func DefaultConfiguration(projectID int) *model.TaskConfiguration {
	return &model.TaskConfiguration{
		ProjectID:     projectID,
		ModuleEnabled: true,
		Statuses: []model.StatusDef{
			{Key: "backlog", Label: "Pendiente", Color: "#6b7280"},
			{Key: "in_progress", Label: "En curso", Color: "#3b82f6"},
			{Key: "done", Label: "Completada", Color: "#22c55e", IsFinal: true},
		},
		Priorities: []model.PriorityDef{
			{Key: "low", Label: "Baja", Color: "#9ca3af"},
			{Key: "medium", Label: "Media", Color: "#f59e0b"},
			{Key: "high", Label: "Alta", Color: "#ef4444"},
		},
		Fields: []model.FieldDef{},
		Permissions: map[string]model.TaskPermissions{
			rbac.RoleWebLeader:     {CanCreate: true, CanEdit: true, CanDelete: true, CanChangeStatus: true},
			rbac.RoleAdministrador: {CanCreate: true, CanEdit: true, CanDelete: true, CanChangeStatus: true},
			rbac.RoleProductOwner:  {CanCreate: true, CanEdit: true, CanDelete: false, CanChangeStatus: true},
			rbac.RoleDeveloper:     {CanCreate: true, CanEdit: true, CanDelete: false, CanChangeStatus: true},
			rbac.RoleQA:            {CanCreate: true, CanEdit: true, CanDelete: false, CanChangeStatus: true},
		},
	}
}

// Configuration returns the project's board configuration, creating and
// persisting the default one on first access.
func (e *Engine) Configuration(ctx context.Context, projectID int) (*model.TaskConfiguration, error) {
	cfg, err := e.configs.GetByProject(ctx, projectID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	cfg = DefaultConfiguration(projectID)
	id, err := e.configs.Insert(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cfg.ID = id

	e.logger.Info("Default task configuration created",
		zap.Int("project_id", projectID),
	)
	return cfg, nil
}

// allowed consults the configuration's permission matrix. Roles without a
// matrix entry fall back to the default matrix so a partially edited
// configuration never locks everyone out.
func (e *Engine) allowed(cfg *model.TaskConfiguration, role, operation string, pick func(model.TaskPermissions) bool) error {
	perms, ok := cfg.Permissions[role]
	if !ok {
		perms, ok = DefaultConfiguration(cfg.ProjectID).Permissions[role]
		if !ok {
			metrics.IncrementPermissionDenial("invalid_role")
			return &BoardPermissionError{Role: role, Operation: operation}
		}
	}
	if !pick(perms) {
		metrics.IncrementPermissionDenial("board_" + operation)
		return &BoardPermissionError{Role: role, Operation: operation}
	}
	return nil
}

// CreateTaskInput carries the client-supplied task attributes. Zero values for
// status and priority select the configuration's defaults.
type CreateTaskInput struct {
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Status       string                 `json:"status"`
	Priority     string                 `json:"priority"`
	AssignedTo   *int                   `json:"assigned_to"`
	DueDate      *time.Time             `json:"due_date"`
	CustomFields map[string]interface{} `json:"custom_fields"`
}

// CreateTask validates and persists a new task at the end of its column.
func (e *Engine) CreateTask(ctx context.Context, session rbac.Session, projectID int, in CreateTaskInput) (*model.Task, error) {
	cfg, err := e.Configuration(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !cfg.ModuleEnabled {
		return nil, newValidationError("task module is disabled for this project")
	}
	if err := e.allowed(cfg, session.Role, "create", func(p model.TaskPermissions) bool { return p.CanCreate }); err != nil {
		return nil, err
	}

	if in.Title == "" {
		return nil, newValidationError("title is required", "title")
	}

	status := in.Status
	if status == "" {
		status = cfg.Statuses[0].Key
	} else if _, ok := cfg.StatusByKey(status); !ok {
		return nil, newValidationError(fmt.Sprintf("unknown status %q", status), "status")
	}

	priority := in.Priority
	if priority == "" {
		if _, ok := cfg.PriorityByKey("medium"); ok {
			priority = "medium"
		} else {
			priority = cfg.Priorities[0].Key
		}
	} else if _, ok := cfg.PriorityByKey(priority); !ok {
		return nil, newValidationError(fmt.Sprintf("unknown priority %q", priority), "priority")
	}

	if err := validateFieldValues(cfg, in.CustomFields); err != nil {
		return nil, err
	}

	count, err := e.tasks.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ProjectID:    projectID,
		Title:        in.Title,
		Description:  in.Description,
		Status:       status,
		Priority:     priority,
		AssignedTo:   in.AssignedTo,
		DueDate:      in.DueDate,
		Order:        count,
		CustomFields: in.CustomFields,
	}
	if task.CustomFields == nil {
		task.CustomFields = map[string]interface{}{}
	}

	id, err := e.tasks.Insert(ctx, task)
	if err != nil {
		return nil, err
	}
	task.ID = id
	e.cache.Put(*task)

	e.logger.Info("Task created",
		zap.Int("project_id", projectID),
		zap.Int("task_id", id),
		zap.String("status", status),
		zap.String("created_by", session.Email),
	)
	return task, nil
}

// UpdateTaskInput patches an existing task. Nil pointers leave the attribute
// unchanged; CustomFields is merged key by key.
type UpdateTaskInput struct {
	Title        *string                `json:"title"`
	Description  *string                `json:"description"`
	Priority     *string                `json:"priority"`
	AssignedTo   *int                   `json:"assigned_to"`
	DueDate      *time.Time             `json:"due_date"`
	CustomFields map[string]interface{} `json:"custom_fields"`
}

// UpdateTask applies an edit optimistically. On a store failure the cached
// view is rolled back and a ReconciliationError is returned.
func (e *Engine) UpdateTask(ctx context.Context, session rbac.Session, taskID int, in UpdateTaskInput) (*model.Task, error) {
	task, err := e.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	cfg, err := e.Configuration(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := e.allowed(cfg, session.Role, "edit", func(p model.TaskPermissions) bool { return p.CanEdit }); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, newValidationError("title is required", "title")
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		if _, ok := cfg.PriorityByKey(*in.Priority); !ok {
			return nil, newValidationError(fmt.Sprintf("unknown priority %q", *in.Priority), "priority")
		}
		task.Priority = *in.Priority
	}
	if in.AssignedTo != nil {
		task.AssignedTo = in.AssignedTo
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	if in.CustomFields != nil {
		if err := validateFieldValues(cfg, in.CustomFields); err != nil {
			return nil, err
		}
		if task.CustomFields == nil {
			task.CustomFields = map[string]interface{}{}
		}
		for k, v := range in.CustomFields {
			task.CustomFields[k] = v
		}
	}

	mut := e.cache.Stage(*task)
	if err := e.tasks.Update(ctx, task); err != nil {
		mut.Rollback()
		metrics.IncrementTaskTransition("rolled_back")
		e.logger.Error("Task update not confirmed by store, rolled back",
			zap.Int("task_id", taskID),
			zap.Error(err),
		)
		return nil, &ReconciliationError{TaskID: taskID, Err: err}
	}
	mut.Commit()

	return task, nil
}

// MoveTask changes a task's status. Moving into a final status enforces every
// required custom field; a single missing field rejects the whole move and the
// error names every missing field.
func (e *Engine) MoveTask(ctx context.Context, session rbac.Session, taskID int, newStatus string) (*model.Task, error) {
	task, err := e.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	cfg, err := e.Configuration(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := e.allowed(cfg, session.Role, "change_status", func(p model.TaskPermissions) bool { return p.CanChangeStatus }); err != nil {
		return nil, err
	}

	statusDef, ok := cfg.StatusByKey(newStatus)
	if !ok {
		return nil, newValidationError(fmt.Sprintf("unknown status %q", newStatus), "status")
	}

	if statusDef.IsFinal {
		if missing := missingRequiredFields(cfg, task.CustomFields); len(missing) > 0 {
			metrics.IncrementTaskTransition("rejected")
			return nil, newValidationError("required fields must be filled before completion", missing...)
		}
	}

	task.Status = newStatus
	if statusDef.IsFinal {
		now := time.Now()
		task.CompletedBy = session.FullName
		task.CompletedAt = &now
	} else {
		task.CompletedBy = ""
		task.CompletedAt = nil
	}

	mut := e.cache.Stage(*task)
	if err := e.tasks.Update(ctx, task); err != nil {
		mut.Rollback()
		metrics.IncrementTaskTransition("rolled_back")
		e.logger.Error("Task move not confirmed by store, rolled back",
			zap.Int("task_id", taskID),
			zap.String("status", newStatus),
			zap.Error(err),
		)
		return nil, &ReconciliationError{TaskID: taskID, Err: err}
	}
	mut.Commit()
	metrics.IncrementTaskTransition("committed")

	e.logger.Info("Task moved",
		zap.Int("task_id", taskID),
		zap.String("status", newStatus),
		zap.Bool("final", statusDef.IsFinal),
		zap.String("moved_by", session.Email),
	)
	return task, nil
}

// ReorderWithinStatus persists a new card order inside one column. The slice
// is the full ordered membership of the column; positions are its indices.
// The store applies the whole sequence in one transaction, so a failure leaves
// the column untouched.
func (e *Engine) ReorderWithinStatus(ctx context.Context, session rbac.Session, projectID int, statusKey string, orderedIDs []int) error {
	cfg, err := e.Configuration(ctx, projectID)
	if err != nil {
		return err
	}
	if err := e.allowed(cfg, session.Role, "change_status", func(p model.TaskPermissions) bool { return p.CanChangeStatus }); err != nil {
		return err
	}
	if _, ok := cfg.StatusByKey(statusKey); !ok {
		return newValidationError(fmt.Sprintf("unknown status %q", statusKey), "status")
	}

	if err := e.tasks.ReorderTasks(ctx, projectID, statusKey, orderedIDs); err != nil {
		return err
	}
	for position, taskID := range orderedIDs {
		if cached, ok := e.cache.Get(taskID); ok {
			cached.Order = position
			e.cache.Put(cached)
		}
	}
	return nil
}

// DeleteTask removes a task for roles the matrix allows to delete.
func (e *Engine) DeleteTask(ctx context.Context, session rbac.Session, taskID int) error {
	task, err := e.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	cfg, err := e.Configuration(ctx, task.ProjectID)
	if err != nil {
		return err
	}
	if err := e.allowed(cfg, session.Role, "delete", func(p model.TaskPermissions) bool { return p.CanDelete }); err != nil {
		return err
	}

	if err := e.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	e.cache.Remove(taskID)

	e.logger.Info("Task deleted",
		zap.Int("task_id", taskID),
		zap.String("deleted_by", session.Email),
	)
	return nil
}

// ConfigPatch replaces whole sections of a board configuration. Nil sections
// stay untouched.
type ConfigPatch struct {
	ModuleEnabled *bool                             `json:"module_enabled"`
	Statuses      *[]model.StatusDef                `json:"custom_statuses"`
	Priorities    *[]model.PriorityDef              `json:"custom_priorities"`
	Fields        *[]model.FieldDef                 `json:"custom_fields"`
	Permissions   *map[string]model.TaskPermissions `json:"permissions"`
}

// UpdateConfiguration applies a patch after validating the result. Invalid
// patches leave the stored configuration untouched.
func (e *Engine) UpdateConfiguration(ctx context.Context, session rbac.Session, projectID int, patch ConfigPatch) (*model.TaskConfiguration, error) {
	if session.Role != rbac.RoleWebLeader && session.Role != rbac.RoleAdministrador {
		metrics.IncrementPermissionDenial("board_configure")
		return nil, &BoardPermissionError{Role: session.Role, Operation: "configure"}
	}

	current, err := e.Configuration(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// Work on a copy so a failed validation never dirties the loaded config.
	next := *current
	if patch.ModuleEnabled != nil {
		next.ModuleEnabled = *patch.ModuleEnabled
	}
	if patch.Statuses != nil {
		next.Statuses = *patch.Statuses
	}
	if patch.Priorities != nil {
		next.Priorities = *patch.Priorities
	}
	if patch.Fields != nil {
		next.Fields = *patch.Fields
	}
	if patch.Permissions != nil {
		next.Permissions = *patch.Permissions
	}

	if err := validateConfiguration(&next); err != nil {
		return nil, err
	}

	if err := e.configs.Update(ctx, &next); err != nil {
		return nil, err
	}

	e.logger.Info("Task configuration updated",
		zap.Int("project_id", projectID),
		zap.Int("statuses", len(next.Statuses)),
		zap.Int("fields", len(next.Fields)),
		zap.String("updated_by", session.Email),
	)
	return &next, nil
}

// validateConfiguration enforces the structural floor of a board: at least one
// status, at least one priority, at least one final status, unique keys.
func validateConfiguration(cfg *model.TaskConfiguration) error {
	if len(cfg.Statuses) == 0 {
		return newValidationError("configuration needs at least one status", "custom_statuses")
	}
	if len(cfg.Priorities) == 0 {
		return newValidationError("configuration needs at least one priority", "custom_priorities")
	}
	if !cfg.HasFinalStatus() {
		return newValidationError("configuration needs at least one final status", "custom_statuses")
	}

	seen := map[string]bool{}
	for _, s := range cfg.Statuses {
		if s.Key == "" {
			return newValidationError("status keys must be non-empty", "custom_statuses")
		}
		if seen[s.Key] {
			return newValidationError(fmt.Sprintf("duplicate status key %q", s.Key), "custom_statuses")
		}
		seen[s.Key] = true
	}

	seen = map[string]bool{}
	for _, f := range cfg.Fields {
		if f.Key == "" {
			return newValidationError("field keys must be non-empty", "custom_fields")
		}
		if seen[f.Key] {
			return newValidationError(fmt.Sprintf("duplicate field key %q", f.Key), "custom_fields")
		}
		seen[f.Key] = true
		if (f.Type == model.FieldSelect || f.Type == model.FieldMultiSelect) && len(f.Options) == 0 {
			return newValidationError(fmt.Sprintf("field %s needs options", f.Key), f.Key)
		}
	}
	return nil
}

// Board returns the project's tasks grouped by status key, in column order.
func (e *Engine) Board(ctx context.Context, projectID int) (*model.TaskConfiguration, map[string][]model.Task, error) {
	cfg, err := e.Configuration(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := e.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	columns := make(map[string][]model.Task, len(cfg.Statuses))
	for _, s := range cfg.Statuses {
		columns[s.Key] = []model.Task{}
	}
	for _, t := range tasks {
		e.cache.Put(t)
		// Tasks left on a removed status stay reachable under their old key.
		columns[t.Status] = append(columns[t.Status], t)
	}
	return cfg, columns, nil
}
