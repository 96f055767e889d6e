package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"checklist-service/internal/model"
)

// TaskConfigRepository persists per-project board configurations. Statuses,
// priorities, fields and the permission matrix are JSONB columns since their
// shape is client-defined.
type TaskConfigRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskConfigRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskConfigRepository {
	return &TaskConfigRepository{db: db, logger: logger}
}

func (r *TaskConfigRepository) GetByProject(ctx context.Context, projectID int) (*model.TaskConfiguration, error) {
	query := `
        SELECT id, project_id, module_enabled, custom_statuses, custom_priorities,
               custom_fields, permissions, created_at, updated_at
        FROM task_configurations
        WHERE project_id = $1
    `
	var cfg model.TaskConfiguration
	var statuses, priorities, fields, permissions []byte
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&cfg.ID,
		&cfg.ProjectID,
		&cfg.ModuleEnabled,
		&statuses,
		&priorities,
		&fields,
		&permissions,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(statuses, &cfg.Statuses); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(priorities, &cfg.Priorities); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &cfg.Fields); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(permissions, &cfg.Permissions); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *TaskConfigRepository) Insert(ctx context.Context, cfg *model.TaskConfiguration) (int, error) {
	r.logger.Debug("Inserting task configuration", zap.Int("project_id", cfg.ProjectID))

	statuses, priorities, fields, permissions, err := marshalConfig(cfg)
	if err != nil {
		return 0, err
	}

	query := `
        INSERT INTO task_configurations (project_id, module_enabled, custom_statuses, custom_priorities, custom_fields, permissions)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `
	var id int
	err = r.db.QueryRow(ctx, query,
		cfg.ProjectID,
		cfg.ModuleEnabled,
		statuses,
		priorities,
		fields,
		permissions,
	).Scan(&id, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert task configuration",
			zap.Error(err),
			zap.Int("project_id", cfg.ProjectID),
		)
		return 0, err
	}
	r.logger.Info("Task configuration inserted",
		zap.Int("config_id", id),
		zap.Int("project_id", cfg.ProjectID),
	)
	return id, nil
}

func (r *TaskConfigRepository) Update(ctx context.Context, cfg *model.TaskConfiguration) error {
	r.logger.Debug("Updating task configuration", zap.Int("project_id", cfg.ProjectID))

	statuses, priorities, fields, permissions, err := marshalConfig(cfg)
	if err != nil {
		return err
	}

	query := `
        UPDATE task_configurations
        SET module_enabled = $1, custom_statuses = $2, custom_priorities = $3,
            custom_fields = $4, permissions = $5, updated_at = NOW()
        WHERE project_id = $6
    `
	_, err = r.db.Exec(ctx, query,
		cfg.ModuleEnabled,
		statuses,
		priorities,
		fields,
		permissions,
		cfg.ProjectID,
	)
	if err != nil {
		r.logger.Error("Failed to update task configuration",
			zap.Error(err),
			zap.Int("project_id", cfg.ProjectID),
		)
		return err
	}
	r.logger.Info("Task configuration updated", zap.Int("project_id", cfg.ProjectID))
	return nil
}

func marshalConfig(cfg *model.TaskConfiguration) (statuses, priorities, fields, permissions []byte, err error) {
	if statuses, err = json.Marshal(cfg.Statuses); err != nil {
		return
	}
	if priorities, err = json.Marshal(cfg.Priorities); err != nil {
		return
	}
	if fields, err = json.Marshal(cfg.Fields); err != nil {
		return
	}
	permissions, err = json.Marshal(cfg.Permissions)
	return
}
