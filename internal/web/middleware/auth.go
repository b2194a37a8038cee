package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth validates the bearer token and stores the caller's user id
// in the request context under "user_id"
func (m *MiddlewareManager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := m.auth.ValidateToken(c, c.GetHeader("Authorization"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)

		c.Next()
	}
}
