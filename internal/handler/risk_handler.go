package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checklist-service/internal/repository"
	"checklist-service/internal/service/risk"
)

// RiskHandler serves the derived risk assessment. Nothing is stored; every
// request recomputes from the current checklist and conflicts.
type RiskHandler struct {
	projects  *repository.ProjectRepository
	items     *repository.ChecklistRepository
	conflicts *repository.ConflictRepository
	logger    *zap.Logger
}

func NewRiskHandler(
	projects *repository.ProjectRepository,
	items *repository.ChecklistRepository,
	conflicts *repository.ConflictRepository,
	logger *zap.Logger,
) *RiskHandler {
	return &RiskHandler{projects: projects, items: items, conflicts: conflicts, logger: logger}
}

func (h *RiskHandler) GetRisk(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	items, err := h.items.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch checklist"})
		return
	}
	conflicts, err := h.conflicts.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch conflicts"})
		return
	}

	assessment := risk.Assess(items, conflicts, project)

	h.logger.Info("Risk assessment computed",
		zap.Int("project_id", projectID),
		zap.String("level", string(assessment.Level)),
		zap.Bool("can_deliver", assessment.CanDeliver),
	)
	c.JSON(http.StatusOK, gin.H{"risk": assessment})
}
