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

// ChecklistRepository persists checklist items. Mutations that other services
// react to (status changes, generation) record an outbox event in the same
// transaction, so the event is never published without the row change.
type ChecklistRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewChecklistRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *ChecklistRepository {
	return &ChecklistRepository{db: db, outbox: outboxRepo, logger: logger}
}

func (r *ChecklistRepository) CountByProject(ctx context.Context, projectID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM checklist_items WHERE project_id = $1`,
		projectID,
	).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count checklist items",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return 0, err
	}
	return count, nil
}

// BulkInsert writes the generated items and a checklist.generated event in one
// transaction.
func (r *ChecklistRepository) BulkInsert(ctx context.Context, project *model.Project, items []model.ChecklistItem) error {
	if len(items) == 0 {
		return nil
	}
	projectID := project.ID
	r.logger.Debug("Bulk inserting checklist items",
		zap.Int("project_id", projectID),
		zap.Int("item_count", len(items)),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO checklist_items (project_id, phase, title, description, weight, item_order, status, technologies, site_types)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	for _, item := range items {
		_, err := tx.Exec(ctx, query,
			item.ProjectID,
			item.Phase,
			item.Title,
			item.Description,
			item.Weight,
			item.Order,
			item.Status,
			item.Technologies,
			item.SiteTypes,
		)
		if err != nil {
			r.logger.Error("Failed to insert checklist item",
				zap.Error(err),
				zap.Int("project_id", projectID),
				zap.String("title", item.Title),
			)
			return err
		}
	}

	aggregateID := int64(projectID)
	payload := contractsmq.ChecklistGeneratedPayload{
		ProjectID:  projectID,
		SiteType:   project.SiteType,
		Technology: project.Technology,
		ItemCount:  len(items),
		TraceID:    trace.FromContext(ctx),
		OccurredAt: time.Now(),
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outbox, "project", &aggregateID, contractsmq.RoutingChecklistGenerated, payload); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("Checklist items inserted",
		zap.Int("project_id", projectID),
		zap.Int("item_count", len(items)),
	)
	return nil
}

func (r *ChecklistRepository) ListByProject(ctx context.Context, projectID int) ([]model.ChecklistItem, error) {
	query := `
        SELECT id, project_id, phase, title, description, weight, item_order, status,
               technologies, site_types, COALESCE(completed_by, ''), COALESCE(completed_by_role, ''),
               completed_at, created_at, updated_at
        FROM checklist_items
        WHERE project_id = $1
        ORDER BY phase, item_order
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query checklist items",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	items := []model.ChecklistItem{}
	for rows.Next() {
		var item model.ChecklistItem
		if err := rows.Scan(
			&item.ID,
			&item.ProjectID,
			&item.Phase,
			&item.Title,
			&item.Description,
			&item.Weight,
			&item.Order,
			&item.Status,
			&item.Technologies,
			&item.SiteTypes,
			&item.CompletedBy,
			&item.CompletedByRole,
			&item.CompletedAt,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan checklist item row",
				zap.Error(err),
				zap.Int("project_id", projectID),
			)
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ChecklistRepository) GetItemByID(ctx context.Context, itemID int) (*model.ChecklistItem, error) {
	query := `
        SELECT id, project_id, phase, title, description, weight, item_order, status,
               technologies, site_types, COALESCE(completed_by, ''), COALESCE(completed_by_role, ''),
               completed_at, created_at, updated_at
        FROM checklist_items
        WHERE id = $1
    `
	var item model.ChecklistItem
	err := r.db.QueryRow(ctx, query, itemID).Scan(
		&item.ID,
		&item.ProjectID,
		&item.Phase,
		&item.Title,
		&item.Description,
		&item.Weight,
		&item.Order,
		&item.Status,
		&item.Technologies,
		&item.SiteTypes,
		&item.CompletedBy,
		&item.CompletedByRole,
		&item.CompletedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to fetch checklist item",
			zap.Error(err),
			zap.Int("item_id", itemID),
		)
		return nil, err
	}
	return &item, nil
}

// InsertItem adds a custom item to a project's checklist.
func (r *ChecklistRepository) InsertItem(ctx context.Context, item *model.ChecklistItem) (int, error) {
	r.logger.Debug("Inserting custom checklist item",
		zap.Int("project_id", item.ProjectID),
		zap.String("phase", item.Phase),
		zap.String("title", item.Title),
	)
	query := `
        INSERT INTO checklist_items (project_id, phase, title, description, weight, item_order, status, technologies, site_types)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		item.ProjectID,
		item.Phase,
		item.Title,
		item.Description,
		item.Weight,
		item.Order,
		item.Status,
		item.Technologies,
		item.SiteTypes,
	).Scan(&id, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert custom checklist item",
			zap.Error(err),
			zap.Int("project_id", item.ProjectID),
		)
		return 0, err
	}
	r.logger.Info("Custom checklist item inserted",
		zap.Int("item_id", id),
		zap.Int("project_id", item.ProjectID),
	)
	return id, nil
}

// UpdateItem changes an item's descriptive attributes.
func (r *ChecklistRepository) UpdateItem(ctx context.Context, item *model.ChecklistItem) error {
	query := `
        UPDATE checklist_items
        SET title = $1, description = $2, weight = $3, updated_at = NOW()
        WHERE id = $4
    `
	_, err := r.db.Exec(ctx, query, item.Title, item.Description, item.Weight, item.ID)
	if err != nil {
		r.logger.Error("Failed to update checklist item",
			zap.Error(err),
			zap.Int("item_id", item.ID),
		)
		return err
	}
	r.logger.Info("Checklist item updated", zap.Int("item_id", item.ID))
	return nil
}

// SetItemStatus transitions an item's status and records the update event in
// the same transaction. completedBy and role are only stored when the new
// status is completed.
func (r *ChecklistRepository) SetItemStatus(ctx context.Context, item *model.ChecklistItem, status, completedBy, role string) error {
	r.logger.Debug("Setting checklist item status",
		zap.Int("item_id", item.ID),
		zap.String("status", status),
		zap.String("acting_role", role),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if status == model.ItemStatusCompleted {
		now := time.Now()
		item.CompletedBy = completedBy
		item.CompletedByRole = role
		item.CompletedAt = &now
	} else {
		item.CompletedBy = ""
		item.CompletedByRole = ""
		item.CompletedAt = nil
	}
	item.Status = status

	query := `
        UPDATE checklist_items
        SET status = $1, completed_by = $2, completed_by_role = $3, completed_at = $4, updated_at = NOW()
        WHERE id = $5
    `
	_, err = tx.Exec(ctx, query, item.Status, item.CompletedBy, item.CompletedByRole, item.CompletedAt, item.ID)
	if err != nil {
		r.logger.Error("Failed to set checklist item status",
			zap.Error(err),
			zap.Int("item_id", item.ID),
		)
		return err
	}

	aggregateID := int64(item.ProjectID)
	payload := contractsmq.ChecklistItemUpdatedPayload{
		ProjectID:  item.ProjectID,
		ItemID:     item.ID,
		Phase:      item.Phase,
		Status:     item.Status,
		Weight:     string(item.Weight),
		ActedBy:    completedBy,
		ActingRole: role,
		TraceID:    trace.FromContext(ctx),
		OccurredAt: time.Now(),
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outbox, "checklist_item", &aggregateID, contractsmq.RoutingChecklistItemUpdate, payload); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("Checklist item status set",
		zap.Int("item_id", item.ID),
		zap.Int("project_id", item.ProjectID),
		zap.String("status", status),
	)
	return nil
}

func (r *ChecklistRepository) DeleteItem(ctx context.Context, itemID int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM checklist_items WHERE id = $1`, itemID)
	if err != nil {
		r.logger.Error("Failed to delete checklist item",
			zap.Error(err),
			zap.Int("item_id", itemID),
		)
		return err
	}
	r.logger.Info("Checklist item deleted",
		zap.Int("item_id", itemID),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

// ReorderItems rewrites the order of the items of one phase. orderedIDs is the
// full ordered membership of the phase.
func (r *ChecklistRepository) ReorderItems(ctx context.Context, projectID int, phase string, orderedIDs []int) error {
	r.logger.Debug("Reordering checklist items",
		zap.Int("project_id", projectID),
		zap.String("phase", phase),
		zap.Int("item_count", len(orderedIDs)),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE checklist_items
        SET item_order = $1, updated_at = NOW()
        WHERE id = $2 AND project_id = $3 AND phase = $4
    `
	for position, itemID := range orderedIDs {
		if _, err := tx.Exec(ctx, query, position, itemID, projectID, phase); err != nil {
			r.logger.Error("Failed to reorder checklist item",
				zap.Error(err),
				zap.Int("item_id", itemID),
			)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info("Checklist items reordered",
		zap.Int("project_id", projectID),
		zap.String("phase", phase),
	)
	return nil
}
