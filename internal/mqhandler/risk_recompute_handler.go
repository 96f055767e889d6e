package mqhandler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	contractsmq "checklist-service/contracts/mq"
	"checklist-service/internal/model"
	"checklist-service/internal/repository"
	"checklist-service/internal/service/risk"
	"checklist-service/pkg/mq"
	"checklist-service/pkg/trace"
)

type lastRisk struct {
	level      model.RiskLevel
	canDeliver bool
}

// RiskRecomputeHandler reacts to checklist and conflict change events by
// recomputing the project's risk assessment. A risk.changed event is only
// published when the level or the delivery gate actually moved, so downstream
// consumers are not flooded by every item toggle.
type RiskRecomputeHandler struct {
	projects  *repository.ProjectRepository
	items     *repository.ChecklistRepository
	conflicts *repository.ConflictRepository
	publisher *mq.Publisher
	logger    *zap.Logger

	mu   sync.Mutex
	last map[int]lastRisk
}

func NewRiskRecomputeHandler(
	projects *repository.ProjectRepository,
	items *repository.ChecklistRepository,
	conflicts *repository.ConflictRepository,
	publisher *mq.Publisher,
	logger *zap.Logger,
) *RiskRecomputeHandler {
	return &RiskRecomputeHandler{
		projects:  projects,
		items:     items,
		conflicts: conflicts,
		publisher: publisher,
		logger:    logger,
		last:      make(map[int]lastRisk),
	}
}

// HandleItemUpdated consumes checklist.item.updated events.
func (h *RiskRecomputeHandler) HandleItemUpdated(ctx context.Context, raw json.RawMessage) error {
	var p contractsmq.ChecklistItemUpdatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ChecklistItemUpdatedPayload", zap.Error(err))
		return err
	}

	h.logger.Info("Handling checklist.item.updated event",
		zap.Int("project_id", p.ProjectID),
		zap.Int("item_id", p.ItemID),
		zap.String("status", p.Status),
	)
	return h.recompute(ctx, p.ProjectID)
}

// HandleConflictChanged consumes conflict.changed events.
func (h *RiskRecomputeHandler) HandleConflictChanged(ctx context.Context, raw json.RawMessage) error {
	var p contractsmq.ConflictChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal ConflictChangedPayload", zap.Error(err))
		return err
	}

	h.logger.Info("Handling conflict.changed event",
		zap.Int("project_id", p.ProjectID),
		zap.Int("conflict_id", p.ConflictID),
		zap.String("status", p.Status),
	)
	return h.recompute(ctx, p.ProjectID)
}

func (h *RiskRecomputeHandler) recompute(ctx context.Context, projectID int) error {
	project, err := h.projects.GetByID(ctx, projectID)
	if err != nil {
		h.logger.Error("Failed to load project for risk recompute",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return err
	}
	items, err := h.items.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	conflicts, err := h.conflicts.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}

	assessment := risk.Assess(items, conflicts, project)

	h.mu.Lock()
	previous, seen := h.last[projectID]
	current := lastRisk{level: assessment.Level, canDeliver: assessment.CanDeliver}
	h.last[projectID] = current
	h.mu.Unlock()

	if seen && previous == current {
		h.logger.Debug("Risk unchanged, no event published",
			zap.Int("project_id", projectID),
			zap.String("level", string(assessment.Level)),
		)
		return nil
	}

	payload := contractsmq.RiskChangedPayload{
		ProjectID:      projectID,
		Level:          string(assessment.Level),
		CanDeliver:     assessment.CanDeliver,
		CompletionRate: assessment.CompletionRate,
		Reasons:        assessment.Reasons,
		TraceID:        trace.FromContext(ctx),
		OccurredAt:     time.Now(),
	}
	if err := h.publisher.PublishWithContext(ctx, contractsmq.RoutingRiskChanged, payload); err != nil {
		h.logger.Error("Failed to publish risk.changed event",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return err
	}

	h.logger.Info("Risk changed, event published",
		zap.Int("project_id", projectID),
		zap.String("level", string(assessment.Level)),
		zap.Bool("can_deliver", assessment.CanDeliver),
	)
	return nil
}
