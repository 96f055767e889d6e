package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checklist-service/internal/model"
	"checklist-service/internal/repository"
	"checklist-service/pkg/rbac"
	"checklist-service/pkg/util"
)

type AuthHandler struct {
	members   *repository.MemberRepository
	gate      *rbac.Gate
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthHandler(members *repository.MemberRepository, gate *rbac.Gate, jwtSecret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{members: members, gate: gate, jwtSecret: jwtSecret, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Register: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if _, ok := h.gate.Capability(req.Role); !ok {
		h.logger.Warn("Register: unknown role", zap.String("role", req.Role))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Register: failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	member := &model.TeamMember{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         req.Role,
	}
	id, err := h.members.Insert(c.Request.Context(), member)
	if err != nil {
		h.logger.Error("Register: failed to insert member",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}
	member.ID = id

	h.logger.Info("Register: success",
		zap.Int("member_id", id),
		zap.String("role", req.Role),
	)
	c.JSON(http.StatusCreated, gin.H{"member": member})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	member, err := h.members.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Warn("Login: member not found", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !util.CheckPassword(req.Password, member.PasswordHash) {
		h.logger.Warn("Login: password mismatch", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := util.GenerateJWT(member.ID, h.jwtSecret)
	if err != nil {
		h.logger.Error("Login: failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to login"})
		return
	}

	h.logger.Info("Login: success",
		zap.Int("member_id", member.ID),
		zap.String("role", member.Role),
	)
	c.JSON(http.StatusOK, gin.H{"token": token, "member": member})
}
