package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	contractsmq "checklist-service/contracts/mq"
	"checklist-service/internal/model"
	"checklist-service/pkg/outbox"
	"checklist-service/pkg/trace"
)

// TaskRepository persists board tasks. Update reads the previous row in its
// transaction and records a task.moved outbox event whenever the status
// actually changed.
type TaskRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, outbox: outboxRepo, logger: logger}
}

func (r *TaskRepository) GetByID(ctx context.Context, taskID int) (*model.Task, error) {
	query := `
        SELECT id, project_id, title, description, status, priority, assigned_to,
               due_date, task_order, custom_fields, COALESCE(completed_by, ''), completed_at,
               created_at, updated_at
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	var fields []byte
	err := r.db.QueryRow(ctx, query, taskID).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.AssignedTo,
		&t.DueDate,
		&t.Order,
		&fields,
		&t.CompletedBy,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to fetch task",
			zap.Error(err),
			zap.Int("task_id", taskID),
		)
		return nil, err
	}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &t.CustomFields); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID int) ([]model.Task, error) {
	query := `
        SELECT id, project_id, title, description, status, priority, assigned_to,
               due_date, task_order, custom_fields, COALESCE(completed_by, ''), completed_at,
               created_at, updated_at
        FROM tasks
        WHERE project_id = $1
        ORDER BY status, task_order
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		var fields []byte
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.AssignedTo,
			&t.DueDate,
			&t.Order,
			&fields,
			&t.CompletedBy,
			&t.CompletedAt,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan task row",
				zap.Error(err),
				zap.Int("project_id", projectID),
			)
			return nil, err
		}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &t.CustomFields); err != nil {
				return nil, err
			}
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) CountByProject(ctx context.Context, projectID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE project_id = $1`,
		projectID,
	).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count tasks",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return 0, err
	}
	return count, nil
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) (int, error) {
	r.logger.Debug("Inserting task",
		zap.Int("project_id", t.ProjectID),
		zap.String("title", t.Title),
		zap.String("status", t.Status),
	)
	fields, err := json.Marshal(t.CustomFields)
	if err != nil {
		return 0, err
	}
	query := `
        INSERT INTO tasks (project_id, title, description, status, priority, assigned_to, due_date, task_order, custom_fields)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at
    `
	var id int
	err = r.db.QueryRow(ctx, query,
		t.ProjectID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.AssignedTo,
		t.DueDate,
		t.Order,
		fields,
	).Scan(&id, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("project_id", t.ProjectID),
		)
		return 0, err
	}
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", id),
		zap.Int("project_id", t.ProjectID),
	)
	return id, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Updating task",
		zap.Int("task_id", t.ID),
		zap.String("status", t.Status),
	)
	fields, err := json.Marshal(t.CustomFields)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var previousStatus string
	err = tx.QueryRow(ctx,
		`SELECT status FROM tasks WHERE id = $1 FOR UPDATE`,
		t.ID,
	).Scan(&previousStatus)
	if err != nil {
		r.logger.Error("Failed to lock task for update",
			zap.Error(err),
			zap.Int("task_id", t.ID),
		)
		return err
	}

	query := `
        UPDATE tasks
        SET title = $1, description = $2, status = $3, priority = $4, assigned_to = $5,
            due_date = $6, custom_fields = $7, completed_by = $8, completed_at = $9, updated_at = NOW()
        WHERE id = $10
    `
	_, err = tx.Exec(ctx, query,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.AssignedTo,
		t.DueDate,
		fields,
		t.CompletedBy,
		t.CompletedAt,
		t.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update task",
			zap.Error(err),
			zap.Int("task_id", t.ID),
		)
		return err
	}

	if previousStatus != t.Status {
		aggregateID := int64(t.ProjectID)
		payload := contractsmq.TaskMovedPayload{
			ProjectID:  t.ProjectID,
			TaskID:     t.ID,
			FromStatus: previousStatus,
			ToStatus:   t.Status,
			Final:      t.CompletedAt != nil,
			ActedBy:    t.CompletedBy,
			TraceID:    trace.FromContext(ctx),
			OccurredAt: time.Now(),
		}
		if err := outbox.InsertEventInTx(ctx, tx, r.outbox, "task", &aggregateID, contractsmq.RoutingTaskMoved, payload); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("Task updated",
		zap.Int("task_id", t.ID),
		zap.String("status", t.Status),
	)
	return nil
}

// ReorderTasks rewrites the order of one column's tasks in a single
// transaction. orderedIDs is the full ordered membership of the column.
func (r *TaskRepository) ReorderTasks(ctx context.Context, projectID int, status string, orderedIDs []int) error {
	r.logger.Debug("Reordering tasks",
		zap.Int("project_id", projectID),
		zap.String("status", status),
		zap.Int("task_count", len(orderedIDs)),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE tasks
        SET task_order = $1, updated_at = NOW()
        WHERE id = $2 AND project_id = $3 AND status = $4
    `
	for position, taskID := range orderedIDs {
		if _, err := tx.Exec(ctx, query, position, taskID, projectID, status); err != nil {
			r.logger.Error("Failed to reorder task",
				zap.Error(err),
				zap.Int("task_id", taskID),
			)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("Tasks reordered",
		zap.Int("project_id", projectID),
		zap.String("status", status),
	)
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, taskID int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Error(err),
			zap.Int("task_id", taskID),
		)
		return err
	}
	r.logger.Info("Task deleted",
		zap.Int("task_id", taskID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}
