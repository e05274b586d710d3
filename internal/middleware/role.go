package middleware

import (
	"net/http"

	"travelbooking/internal/domain"
	"travelbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through when the caller holds one of the roles.
func RequireRoles(roles ...domain.UserRole) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		role, exists := c.Get(roleKey)
		if !exists {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		if r, _ := role.(string); !allowed[r] {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

// Moderators admits providers and admins.
func Moderators() gin.HandlerFunc {
	return RequireRoles(domain.RoleProvider, domain.RoleAdmin)
}
