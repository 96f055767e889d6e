package checklist

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"checklist-service/internal/model"
	"checklist-service/pkg/metrics"
	"checklist-service/pkg/util"
)

// ErrAlreadyInitialized is returned when a project's checklist already has
// items. Generation runs at most once per project.
var ErrAlreadyInitialized = errors.New("project checklist already initialized")

// ItemStore is the slice of the checklist repository the initializer needs.
type ItemStore interface {
	CountByProject(ctx context.Context, projectID int) (int, error)
	BulkInsert(ctx context.Context, project *model.Project, items []model.ChecklistItem) error
}

// Initializer runs checklist generation exactly once per project. The DB count
// check catches the common case; the Redis once-guard closes the race between
// two clients hitting first load at the same time.
type Initializer struct {
	items  ItemStore
	guard  *util.Deduper
	logger *zap.Logger
}

func NewInitializer(items ItemStore, guard *util.Deduper, logger *zap.Logger) *Initializer {
	return &Initializer{items: items, guard: guard, logger: logger}
}

// Initialize generates and persists the project's checklist. Returns
// ErrAlreadyInitialized when items already exist or another initialization is
// in flight.
func (i *Initializer) Initialize(ctx context.Context, project *model.Project) ([]model.ChecklistItem, error) {
	count, err := i.items.CountByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		i.logger.Warn("Checklist generation requested for initialized project",
			zap.Int("project_id", project.ID),
			zap.Int("existing_items", count),
		)
		return nil, ErrAlreadyInitialized
	}

	if i.guard != nil && !i.guard.AcquireOnce(ctx, "checklist_generate", project.ID) {
		return nil, ErrAlreadyInitialized
	}

	items := Generate(project.SiteType, project.Technology, project.ApplicableAreas)
	for idx := range items {
		items[idx].ProjectID = project.ID
	}

	if err := i.items.BulkInsert(ctx, project, items); err != nil {
		// Let a retry through the guard after a failed insert.
		if i.guard != nil {
			i.guard.Release(ctx, "checklist_generate", project.ID)
		}
		i.logger.Error("Failed to bulk insert checklist items",
			zap.Int("project_id", project.ID),
			zap.Int("item_count", len(items)),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.IncrementChecklistGenerated(project.SiteType)
	i.logger.Info("Checklist generated",
		zap.Int("project_id", project.ID),
		zap.String("site_type", project.SiteType),
		zap.String("technology", project.Technology),
		zap.Int("item_count", len(items)),
	)

	return items, nil
}
