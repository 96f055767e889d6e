package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checklist-service/internal/catalog"
	"checklist-service/internal/model"
	"checklist-service/internal/repository"
	"checklist-service/internal/service/checklist"
	"checklist-service/internal/service/phases"
	"checklist-service/pkg/rbac"
)

type ProjectHandler struct {
	projects    *repository.ProjectRepository
	initializer *checklist.Initializer
	gate        *rbac.Gate
	logger      *zap.Logger
}

func NewProjectHandler(projects *repository.ProjectRepository, initializer *checklist.Initializer, gate *rbac.Gate, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, initializer: initializer, gate: gate, logger: logger}
}

type createProjectRequest struct {
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	SiteType        string     `json:"site_type" binding:"required"`
	Technology      string     `json:"technology" binding:"required"`
	ApplicableAreas []string   `json:"applicable_areas"`
	TargetDate      *time.Time `json:"target_date"`
}

// CreateProject stores the project and generates its checklist in one request.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateProject: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if _, ok := catalog.SiteTypes()[req.SiteType]; !ok {
		h.logger.Warn("CreateProject: unknown site type", zap.String("site_type", req.SiteType))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown site type"})
		return
	}
	for _, area := range req.ApplicableAreas {
		if _, ok := catalog.PhaseByID(area); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown phase in applicable_areas: " + area})
			return
		}
	}

	project := &model.Project{
		Title:           req.Title,
		Description:     req.Description,
		SiteType:        req.SiteType,
		Technology:      req.Technology,
		ApplicableAreas: req.ApplicableAreas,
		TargetDate:      req.TargetDate,
		Status:          "active",
	}
	id, err := h.projects.Insert(c.Request.Context(), project)
	if err != nil {
		h.logger.Error("CreateProject: failed to insert project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}
	project.ID = id

	items, err := h.initializer.Initialize(c.Request.Context(), project)
	if err != nil && !errors.Is(err, checklist.ErrAlreadyInitialized) {
		h.logger.Error("CreateProject: checklist generation failed",
			zap.Int("project_id", id),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate checklist"})
		return
	}

	h.logger.Info("CreateProject: success",
		zap.Int("project_id", id),
		zap.String("site_type", req.SiteType),
		zap.Int("item_count", len(items)),
	)
	c.JSON(http.StatusCreated, gin.H{"project": project, "checklist": items})
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		h.logger.Error("ListProjects: failed to fetch projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"phases":  phases.Effective(project.PhaseOverrides),
	})
}

type updateProjectRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	TargetDate  *time.Time `json:"target_date"`
	Status      *string    `json:"status"`
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.TargetDate != nil {
		project.TargetDate = req.TargetDate
	}
	if req.Status != nil {
		project.Status = *req.Status
	}

	if err := h.projects.Update(c.Request.Context(), project); err != nil {
		h.logger.Error("UpdateProject: failed to update project",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

// ListPhases returns the project's effective phases with overrides applied.
func (h *ProjectHandler) ListPhases(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"phases": phases.Effective(project.PhaseOverrides)})
}

type renamePhaseRequest struct {
	CustomName string `json:"custom_name"`
}

func (h *ProjectHandler) RenamePhase(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	phaseID := c.Param("phase")

	session := actingSession(c)
	if err := h.gate.CanRenamePhase(session, phaseID); err != nil {
		h.logger.Warn("RenamePhase: denied",
			zap.String("role", session.Role),
			zap.String("phase", phaseID),
			zap.Error(err),
		)
		renderDenial(c, err)
		return
	}

	var req renamePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.applyOverrideChange(c, projectID, func(overrides map[string]model.PhaseOverride) (map[string]model.PhaseOverride, error) {
		return phases.Rename(overrides, phaseID, req.CustomName)
	})
}

type hidePhaseRequest struct {
	Hidden bool `json:"hidden"`
}

func (h *ProjectHandler) HidePhase(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	phaseID := c.Param("phase")

	session := actingSession(c)
	if err := h.gate.CanHidePhase(session, phaseID); err != nil {
		h.logger.Warn("HidePhase: denied",
			zap.String("role", session.Role),
			zap.String("phase", phaseID),
			zap.Error(err),
		)
		renderDenial(c, err)
		return
	}

	var req hidePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.applyOverrideChange(c, projectID, func(overrides map[string]model.PhaseOverride) (map[string]model.PhaseOverride, error) {
		return phases.SetHidden(overrides, phaseID, req.Hidden)
	})
}

type reorderPhasesRequest struct {
	Order []string `json:"order" binding:"required"`
}

// ReorderPhases is restricted to the web leader.
func (h *ProjectHandler) ReorderPhases(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	session := actingSession(c)
	if err := h.gate.CanReorderPhases(session); err != nil {
		h.logger.Warn("ReorderPhases: denied",
			zap.String("role", session.Role),
			zap.Error(err),
		)
		renderDenial(c, err)
		return
	}

	var req reorderPhasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.applyOverrideChange(c, projectID, func(overrides map[string]model.PhaseOverride) (map[string]model.PhaseOverride, error) {
		return phases.Reorder(overrides, req.Order)
	})
}

func (h *ProjectHandler) applyOverrideChange(
	c *gin.Context,
	projectID int,
	change func(map[string]model.PhaseOverride) (map[string]model.PhaseOverride, error),
) {
	project, err := h.projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	updated, err := change(project.PhaseOverrides)
	if err != nil {
		if errors.Is(err, phases.ErrUnknownPhase) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update phases"})
		return
	}

	if err := h.projects.UpdatePhaseOverrides(c.Request.Context(), projectID, updated); err != nil {
		h.logger.Error("Failed to persist phase overrides",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update phases"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"phases": phases.Effective(updated)})
}
