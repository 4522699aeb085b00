package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyboard-server/internal/models"
)

// AuthMiddleware verifies the bearer token and stores the user id and access
// UUID in the context.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			handleServiceError(c, models.ErrUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			zap.L().Warn("Invalid Authorization header format")
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		claims, err := h.authService.VerifyAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			zap.L().Debug("Access token verification failed", zap.Error(err))
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			handleServiceError(c, err)
			return
		}

		tokenVerificationsTotal.WithLabelValues("success").Inc()
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxAccessUUID, claims.ID)
		c.Next()
	}
}
