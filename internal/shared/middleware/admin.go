package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole restricts a route group to operators whose role is in the
// allowed set, read from the context AuthMiddleware populated.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, exists := RoleFromContext(c)
		if !exists || !allowed[role] {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "access denied: insufficient role",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
