package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"checklist-service/internal/model"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project",
		zap.String("title", p.Title),
		zap.String("site_type", p.SiteType),
		zap.String("technology", p.Technology),
	)
	query := `
        INSERT INTO projects (title, description, site_type, technology, applicable_areas, target_date, status, phase_overrides)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `
	overrides, err := json.Marshal(p.PhaseOverrides)
	if err != nil {
		return 0, err
	}
	var id int
	err = r.db.QueryRow(ctx, query,
		p.Title,
		p.Description,
		p.SiteType,
		p.Technology,
		p.ApplicableAreas,
		p.TargetDate,
		p.Status,
		overrides,
	).Scan(&id, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert project",
			zap.Error(err),
			zap.String("title", p.Title),
		)
		return 0, err
	}
	r.logger.Info("Project inserted successfully",
		zap.Int("project_id", id),
		zap.String("site_type", p.SiteType),
	)
	return id, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, projectID int) (*model.Project, error) {
	r.logger.Debug("Fetching project", zap.Int("project_id", projectID))
	query := `
        SELECT id, title, description, site_type, technology, applicable_areas,
               target_date, status, phase_overrides, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	var overrides []byte
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.SiteType,
		&p.Technology,
		&p.ApplicableAreas,
		&p.TargetDate,
		&p.Status,
		&overrides,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to fetch project",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	if len(overrides) > 0 {
		if err := json.Unmarshal(overrides, &p.PhaseOverrides); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	r.logger.Debug("Listing projects")
	query := `
        SELECT id, title, description, site_type, technology, applicable_areas,
               target_date, status, phase_overrides, created_at, updated_at
        FROM projects
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		var overrides []byte
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Description,
			&p.SiteType,
			&p.Technology,
			&p.ApplicableAreas,
			&p.TargetDate,
			&p.Status,
			&overrides,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan project row", zap.Error(err))
			return nil, err
		}
		if len(overrides) > 0 {
			if err := json.Unmarshal(overrides, &p.PhaseOverrides); err != nil {
				return nil, err
			}
		}
		projects = append(projects, p)
	}
	r.logger.Info("Projects listed successfully", zap.Int("count", len(projects)))
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	r.logger.Debug("Updating project", zap.Int("project_id", p.ID))
	query := `
        UPDATE projects
        SET title = $1, description = $2, target_date = $3, status = $4, updated_at = NOW()
        WHERE id = $5
    `
	result, err := r.db.Exec(ctx, query, p.Title, p.Description, p.TargetDate, p.Status, p.ID)
	if err != nil {
		r.logger.Error("Failed to update project",
			zap.Error(err),
			zap.Int("project_id", p.ID),
		)
		return err
	}
	r.logger.Info("Project updated",
		zap.Int("project_id", p.ID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

// UpdatePhaseOverrides replaces the project's phase customization map. Catalog
// phases themselves are immutable; only the per-project overlay changes.
func (r *ProjectRepository) UpdatePhaseOverrides(ctx context.Context, projectID int, overrides map[string]model.PhaseOverride) error {
	r.logger.Debug("Updating phase overrides",
		zap.Int("project_id", projectID),
		zap.Int("override_count", len(overrides)),
	)
	payload, err := json.Marshal(overrides)
	if err != nil {
		return err
	}
	query := `
        UPDATE projects
        SET phase_overrides = $1, updated_at = NOW()
        WHERE id = $2
    `
	_, err = r.db.Exec(ctx, query, payload, projectID)
	if err != nil {
		r.logger.Error("Failed to update phase overrides",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return err
	}
	r.logger.Info("Phase overrides updated", zap.Int("project_id", projectID))
	return nil
}
