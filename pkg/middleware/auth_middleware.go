package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bmapp/pkg/utils"
)

const UserIDKey = "user_id"

// AuthMiddleware resolves the bearer token to a user id and stores it under UserIDKey.
func AuthMiddleware(verifier utils.IdentityVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		userID, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			log.Debug("token rejected", zap.String("trace_id", c.GetString(TraceIDKey)), zap.Error(err))
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
