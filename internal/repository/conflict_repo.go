package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	contractsmq "checklist-service/contracts/mq"
	"checklist-service/internal/model"
	"checklist-service/pkg/outbox"
	"checklist-service/pkg/trace"
)

// ConflictRepository persists item conflicts. Opening and resolving a conflict
// both record a conflict.changed outbox event transactionally, since open
// conflicts gate delivery.
type ConflictRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewConflictRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *ConflictRepository {
	return &ConflictRepository{db: db, outbox: outboxRepo, logger: logger}
}

func (r *ConflictRepository) Insert(ctx context.Context, c *model.Conflict) (int, error) {
	r.logger.Debug("Opening conflict",
		zap.Int("project_id", c.ProjectID),
		zap.String("raised_by", c.RaisedBy),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO conflicts (project_id, item_id, description, status, raised_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	c.Status = model.ConflictStatusOpen
	var id int
	err = tx.QueryRow(ctx, query,
		c.ProjectID,
		c.ItemID,
		c.Description,
		c.Status,
		c.RaisedBy,
	).Scan(&id, &c.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert conflict",
			zap.Error(err),
			zap.Int("project_id", c.ProjectID),
		)
		return 0, err
	}
	c.ID = id

	// Items under dispute are flagged so the board shows them blocked.
	if c.ItemID != nil {
		_, err = tx.Exec(ctx,
			`UPDATE checklist_items SET status = $1, updated_at = NOW() WHERE id = $2`,
			model.ItemStatusConflict, *c.ItemID,
		)
		if err != nil {
			r.logger.Error("Failed to flag conflicted item",
				zap.Error(err),
				zap.Int("item_id", *c.ItemID),
			)
			return 0, err
		}
	}

	aggregateID := int64(c.ProjectID)
	payload := contractsmq.ConflictChangedPayload{
		ProjectID:  c.ProjectID,
		ConflictID: id,
		ItemID:     c.ItemID,
		Status:     model.ConflictStatusOpen,
		ActedBy:    c.RaisedBy,
		TraceID:    trace.FromContext(ctx),
		OccurredAt: time.Now(),
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outbox, "conflict", &aggregateID, contractsmq.RoutingConflictChanged, payload); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	r.logger.Info("Conflict opened",
		zap.Int("conflict_id", id),
		zap.Int("project_id", c.ProjectID),
	)
	return id, nil
}

func (r *ConflictRepository) GetByID(ctx context.Context, conflictID int) (*model.Conflict, error) {
	query := `
        SELECT id, project_id, item_id, description, status, raised_by,
               COALESCE(resolved_by, ''), created_at, resolved_at
        FROM conflicts
        WHERE id = $1
    `
	var c model.Conflict
	err := r.db.QueryRow(ctx, query, conflictID).Scan(
		&c.ID,
		&c.ProjectID,
		&c.ItemID,
		&c.Description,
		&c.Status,
		&c.RaisedBy,
		&c.ResolvedBy,
		&c.CreatedAt,
		&c.ResolvedAt,
	)
	if err != nil {
		r.logger.Error("Failed to fetch conflict",
			zap.Error(err),
			zap.Int("conflict_id", conflictID),
		)
		return nil, err
	}
	return &c, nil
}

func (r *ConflictRepository) ListByProject(ctx context.Context, projectID int) ([]model.Conflict, error) {
	query := `
        SELECT id, project_id, item_id, description, status, raised_by,
               COALESCE(resolved_by, ''), created_at, resolved_at
        FROM conflicts
        WHERE project_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query conflicts",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	conflicts := []model.Conflict{}
	for rows.Next() {
		var c model.Conflict
		if err := rows.Scan(
			&c.ID,
			&c.ProjectID,
			&c.ItemID,
			&c.Description,
			&c.Status,
			&c.RaisedBy,
			&c.ResolvedBy,
			&c.CreatedAt,
			&c.ResolvedAt,
		); err != nil {
			r.logger.Error("Failed to scan conflict row",
				zap.Error(err),
				zap.Int("project_id", projectID),
			)
			return nil, err
		}
		conflicts = append(conflicts, c)
	}
	return conflicts, rows.Err()
}

// Resolve closes a conflict and returns the disputed item to pending.
func (r *ConflictRepository) Resolve(ctx context.Context, c *model.Conflict, resolvedBy string) error {
	r.logger.Debug("Resolving conflict",
		zap.Int("conflict_id", c.ID),
		zap.String("resolved_by", resolvedBy),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	query := `
        UPDATE conflicts
        SET status = $1, resolved_by = $2, resolved_at = $3
        WHERE id = $4
    `
	_, err = tx.Exec(ctx, query, model.ConflictStatusResolved, resolvedBy, now, c.ID)
	if err != nil {
		r.logger.Error("Failed to resolve conflict",
			zap.Error(err),
			zap.Int("conflict_id", c.ID),
		)
		return err
	}
	c.Status = model.ConflictStatusResolved
	c.ResolvedBy = resolvedBy
	c.ResolvedAt = &now

	if c.ItemID != nil {
		_, err = tx.Exec(ctx,
			`UPDATE checklist_items SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
			model.ItemStatusPending, *c.ItemID, model.ItemStatusConflict,
		)
		if err != nil {
			r.logger.Error("Failed to unflag conflicted item",
				zap.Error(err),
				zap.Int("item_id", *c.ItemID),
			)
			return err
		}
	}

	aggregateID := int64(c.ProjectID)
	payload := contractsmq.ConflictChangedPayload{
		ProjectID:  c.ProjectID,
		ConflictID: c.ID,
		ItemID:     c.ItemID,
		Status:     model.ConflictStatusResolved,
		ActedBy:    resolvedBy,
		TraceID:    trace.FromContext(ctx),
		OccurredAt: now,
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outbox, "conflict", &aggregateID, contractsmq.RoutingConflictChanged, payload); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("Conflict resolved",
		zap.Int("conflict_id", c.ID),
		zap.Int("project_id", c.ProjectID),
	)
	return nil
}
