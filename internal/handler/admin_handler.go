package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checklist-service/pkg/outbox"
	"checklist-service/pkg/rbac"
)

// AdminHandler exposes operational endpoints: replaying parked outbox events.
// Restricted to the administrator role.
type AdminHandler struct {
	replay *outbox.ReplayService
	logger *zap.Logger
}

func NewAdminHandler(replay *outbox.ReplayService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{replay: replay, logger: logger}
}

func (h *AdminHandler) requireAdmin(c *gin.Context) bool {
	session := actingSession(c)
	if session.Role != rbac.RoleAdministrador {
		renderDenial(c, &rbac.RequiresLeaderError{Role: session.Role, Action: "replay_events"})
		return false
	}
	return true
}

// ReplayEvent re-publishes one parked outbox event by ID.
func (h *AdminHandler) ReplayEvent(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	eventID, err := strconv.ParseInt(c.Param("eventId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.replay.ReplayEvent(c.Request.Context(), eventID); err != nil {
		h.logger.Error("ReplayEvent: failed",
			zap.Int64("event_id", eventID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "replayed", "event_id": eventID})
}

// ReplayFailedEvents re-publishes up to ?limit failed events (default 100).
func (h *AdminHandler) ReplayFailedEvents(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	count, err := h.replay.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("ReplayFailedEvents: failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("ReplayFailedEvents: done", zap.Int("replayed", count))
	c.JSON(http.StatusOK, gin.H{"replayed": count})
}
