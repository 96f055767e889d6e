package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checklist-service/internal/catalog"
	"checklist-service/internal/model"
	"checklist-service/internal/repository"
	"checklist-service/pkg/rbac"
)

// ChecklistHandler exposes checklist item operations. Every mutation runs
// through the permission gate with the acting role from the request.
type ChecklistHandler struct {
	items  *repository.ChecklistRepository
	gate   *rbac.Gate
	logger *zap.Logger
}

func NewChecklistHandler(items *repository.ChecklistRepository, gate *rbac.Gate, logger *zap.Logger) *ChecklistHandler {
	return &ChecklistHandler{items: items, gate: gate, logger: logger}
}

func (h *ChecklistHandler) ListItems(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	items, err := h.items.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("ListItems: failed to fetch checklist",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch checklist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type setItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetItemStatus transitions one item. Completing is the only transition
// non-leader roles may perform, and only inside their phases.
func (h *ChecklistHandler) SetItemStatus(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req setItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	switch req.Status {
	case model.ItemStatusPending, model.ItemStatusInProgress, model.ItemStatusCompleted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	item, err := h.items.GetItemByID(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	session := actingSession(c)
	action := rbac.ActionEditItem
	if req.Status == model.ItemStatusCompleted {
		action = rbac.ActionCompleteItem
	}
	if err := h.gate.CanAct(session, item.Phase, action); err != nil {
		h.logger.Warn("SetItemStatus: denied",
			zap.String("role", session.Role),
			zap.String("phase", item.Phase),
			zap.String("status", req.Status),
			zap.Error(err),
		)
		renderDenial(c, err)
		return
	}

	if err := h.items.SetItemStatus(c.Request.Context(), item, req.Status, session.FullName, session.Role); err != nil {
		h.logger.Error("SetItemStatus: failed to persist transition",
			zap.Int("item_id", itemID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update item"})
		return
	}

	h.logger.Info("SetItemStatus: success",
		zap.Int("item_id", itemID),
		zap.String("status", req.Status),
		zap.String("acting_role", session.Role),
	)
	c.JSON(http.StatusOK, gin.H{"item": item})
}

type addItemRequest struct {
	Phase       string       `json:"phase" binding:"required"`
	Title       string       `json:"title" binding:"required"`
	Description string       `json:"description"`
	Weight      model.Weight `json:"weight" binding:"required"`
	Order       int          `json:"order"`
}

func (h *ChecklistHandler) AddItem(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if _, ok := catalog.PhaseByID(req.Phase); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown phase"})
		return
	}
	switch req.Weight {
	case model.WeightLow, model.WeightMedium, model.WeightHigh, model.WeightCritical:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid weight"})
		return
	}

	session := actingSession(c)
	if err := h.gate.CanAct(session, req.Phase, rbac.ActionAddItem); err != nil {
		renderDenial(c, err)
		return
	}

	item := &model.ChecklistItem{
		ProjectID:    projectID,
		Phase:        req.Phase,
		Title:        req.Title,
		Description:  req.Description,
		Weight:       req.Weight,
		Order:        req.Order,
		Status:       model.ItemStatusPending,
		Technologies: []string{catalog.TagAll},
		SiteTypes:    []string{catalog.TagAll},
	}
	id, err := h.items.InsertItem(c.Request.Context(), item)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item"})
		return
	}
	item.ID = id
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

type editItemRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Weight      *model.Weight `json:"weight"`
}

func (h *ChecklistHandler) EditItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req editItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.items.GetItemByID(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	session := actingSession(c)
	if err := h.gate.CanAct(session, item.Phase, rbac.ActionEditItem); err != nil {
		renderDenial(c, err)
		return
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Weight != nil {
		switch *req.Weight {
		case model.WeightLow, model.WeightMedium, model.WeightHigh, model.WeightCritical:
			item.Weight = *req.Weight
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid weight"})
			return
		}
	}

	if err := h.items.UpdateItem(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *ChecklistHandler) DeleteItem(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	item, err := h.items.GetItemByID(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	session := actingSession(c)
	if err := h.gate.CanAct(session, item.Phase, rbac.ActionDeleteItem); err != nil {
		renderDenial(c, err)
		return
	}

	if err := h.items.DeleteItem(c.Request.Context(), itemID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type reorderItemsRequest struct {
	Phase string `json:"phase" binding:"required"`
	Order []int  `json:"order" binding:"required"`
}

func (h *ChecklistHandler) ReorderItems(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req reorderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if _, ok := catalog.PhaseByID(req.Phase); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown phase"})
		return
	}

	session := actingSession(c)
	if err := h.gate.CanAct(session, req.Phase, rbac.ActionReorderItems); err != nil {
		renderDenial(c, err)
		return
	}

	if err := h.items.ReorderItems(c.Request.Context(), projectID, req.Phase, req.Order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reorder items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reordered"})
}
