package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checklist-service/internal/service/taskflow"
)

// TaskHandler exposes the project task board.
type TaskHandler struct {
	engine *taskflow.Engine
	logger *zap.Logger
}

func NewTaskHandler(engine *taskflow.Engine, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{engine: engine, logger: logger}
}

func (h *TaskHandler) GetBoard(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	cfg, columns, err := h.engine.Board(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("GetBoard: failed to load board",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load board"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configuration": cfg, "columns": columns})
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req taskflow.CreateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session := actingSession(c)
	task, err := h.engine.CreateTask(c.Request.Context(), session, projectID, req)
	if err != nil {
		h.logger.Warn("CreateTask: rejected",
			zap.Int("project_id", projectID),
			zap.String("role", session.Role),
			zap.Error(err),
		)
		renderTaskflowError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, err := strconv.Atoi(c.Param("taskId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req taskflow.UpdateTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.engine.UpdateTask(c.Request.Context(), actingSession(c), taskID, req)
	if err != nil {
		renderTaskflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

type moveTaskRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *TaskHandler) MoveTask(c *gin.Context) {
	taskID, err := strconv.Atoi(c.Param("taskId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req moveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session := actingSession(c)
	task, err := h.engine.MoveTask(c.Request.Context(), session, taskID, req.Status)
	if err != nil {
		h.logger.Warn("MoveTask: rejected",
			zap.Int("task_id", taskID),
			zap.String("status", req.Status),
			zap.String("role", session.Role),
			zap.Error(err),
		)
		renderTaskflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

type reorderTasksRequest struct {
	Status string `json:"status" binding:"required"`
	Order  []int  `json:"order" binding:"required"`
}

func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req reorderTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.engine.ReorderWithinStatus(c.Request.Context(), actingSession(c), projectID, req.Status, req.Order); err != nil {
		renderTaskflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reordered"})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, err := strconv.Atoi(c.Param("taskId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := h.engine.DeleteTask(c.Request.Context(), actingSession(c), taskID); err != nil {
		renderTaskflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *TaskHandler) GetConfiguration(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	cfg, err := h.engine.Configuration(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load configuration"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configuration": cfg})
}

func (h *TaskHandler) UpdateConfiguration(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req taskflow.ConfigPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session := actingSession(c)
	cfg, err := h.engine.UpdateConfiguration(c.Request.Context(), session, projectID, req)
	if err != nil {
		h.logger.Warn("UpdateConfiguration: rejected",
			zap.Int("project_id", projectID),
			zap.String("role", session.Role),
			zap.Error(err),
		)
		renderTaskflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"configuration": cfg})
}
