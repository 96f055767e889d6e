package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checklist-service/internal/model"
	"checklist-service/internal/repository"
	"checklist-service/pkg/rbac"
)

type ConflictHandler struct {
	conflicts *repository.ConflictRepository
	gate      *rbac.Gate
	logger    *zap.Logger
}

func NewConflictHandler(conflicts *repository.ConflictRepository, gate *rbac.Gate, logger *zap.Logger) *ConflictHandler {
	return &ConflictHandler{conflicts: conflicts, gate: gate, logger: logger}
}

func (h *ConflictHandler) ListConflicts(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	conflicts, err := h.conflicts.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("ListConflicts: failed to fetch conflicts",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch conflicts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": conflicts})
}

type openConflictRequest struct {
	ItemID      *int   `json:"item_id"`
	Description string `json:"description" binding:"required"`
}

// OpenConflict raises a disagreement. Any valid role may open one; disputes
// are how non-leaders push back on checklist decisions.
func (h *ConflictHandler) OpenConflict(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req openConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session := actingSession(c)
	if _, ok := h.gate.Capability(session.Role); !ok && session.Role != rbac.RoleWebLeader {
		renderDenial(c, &rbac.InvalidRoleError{Role: session.Role})
		return
	}

	conflict := &model.Conflict{
		ProjectID:   projectID,
		ItemID:      req.ItemID,
		Description: req.Description,
		RaisedBy:    session.FullName,
	}
	id, err := h.conflicts.Insert(c.Request.Context(), conflict)
	if err != nil {
		h.logger.Error("OpenConflict: failed to insert conflict",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open conflict"})
		return
	}

	h.logger.Info("OpenConflict: success",
		zap.Int("conflict_id", id),
		zap.Int("project_id", projectID),
		zap.String("raised_by", session.Email),
	)
	c.JSON(http.StatusCreated, gin.H{"conflict": conflict})
}

// ResolveConflict closes a dispute. Resolution is a leader call: the web
// leader arbitrates, so only leader roles may resolve.
func (h *ConflictHandler) ResolveConflict(c *gin.Context) {
	conflictID, err := strconv.Atoi(c.Param("conflictId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conflict id"})
		return
	}

	conflict, err := h.conflicts.GetByID(c.Request.Context(), conflictID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conflict not found"})
		return
	}
	if conflict.Status == model.ConflictStatusResolved {
		c.JSON(http.StatusOK, gin.H{"conflict": conflict})
		return
	}

	session := actingSession(c)
	if session.Role != rbac.RoleWebLeader {
		capability, ok := h.gate.Capability(session.Role)
		if !ok {
			renderDenial(c, &rbac.InvalidRoleError{Role: session.Role})
			return
		}
		if !capability.Leader {
			renderDenial(c, &rbac.RequiresLeaderError{Role: session.Role, Action: "resolve_conflict"})
			return
		}
	}

	if err := h.conflicts.Resolve(c.Request.Context(), conflict, session.FullName); err != nil {
		h.logger.Error("ResolveConflict: failed to resolve",
			zap.Int("conflict_id", conflictID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve conflict"})
		return
	}

	h.logger.Info("ResolveConflict: success",
		zap.Int("conflict_id", conflictID),
		zap.String("resolved_by", session.Email),
	)
	c.JSON(http.StatusOK, gin.H{"conflict": conflict})
}
