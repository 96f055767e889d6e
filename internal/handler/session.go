package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"checklist-service/internal/model"
	"checklist-service/internal/service/taskflow"
	"checklist-service/pkg/rbac"
)

// MemberContextKey is where the auth middleware stores the authenticated
// member.
const MemberContextKey = "member"

// ActingRoleHeader selects the role the user is acting as for this request.
// It defaults to the member's stored role when absent; the permission gate
// decides whether the chosen role may act.
const ActingRoleHeader = "X-Acting-Role"

// actingSession builds the permission session from the authenticated member
// and the acting-role header.
func actingSession(c *gin.Context) rbac.Session {
	member := c.MustGet(MemberContextKey).(*model.TeamMember)
	role := c.GetHeader(ActingRoleHeader)
	if role == "" {
		role = member.Role
	}
	return rbac.Session{
		Email:    member.Email,
		FullName: member.FullName,
		Role:     role,
	}
}

// userMessager is implemented by denial errors that carry user-facing text.
type userMessager interface {
	UserMessage() string
}

// renderDenial writes a permission denial response with both the machine error
// and the user-facing message.
func renderDenial(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var um userMessager
	if errors.As(err, &um) {
		body["message"] = um.UserMessage()
	}
	c.JSON(http.StatusForbidden, body)
}

// renderTaskflowError maps taskflow errors onto HTTP status codes.
func renderTaskflowError(c *gin.Context, err error) {
	var verr *taskflow.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message, "fields": verr.Fields})
		return
	}
	var perr *taskflow.BoardPermissionError
	if errors.As(err, &perr) {
		renderDenial(c, perr)
		return
	}
	var rerr *taskflow.ReconciliationError
	if errors.As(err, &rerr) {
		c.JSON(http.StatusConflict, gin.H{"error": rerr.Error(), "task_id": rerr.TaskID})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
