package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"checklist-service/internal/handler"
	"checklist-service/internal/repository"
	"checklist-service/pkg/util"
)

// AuthMiddleware validates the bearer token and loads the member into the
// request context.
func AuthMiddleware(members *repository.MemberRepository, jwtSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		memberID, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			logger.Warn("Auth: invalid token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		member, err := members.GetByID(c.Request.Context(), memberID)
		if err != nil {
			logger.Warn("Auth: member not found", zap.Int("member_id", memberID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "member not found"})
			return
		}

		c.Set(handler.MemberContextKey, member)
		c.Next()
	}
}
