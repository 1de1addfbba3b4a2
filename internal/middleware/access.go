package middleware

import (
	"net/http"

	"github.com/funnelbase-dev/funnelbase/internal/types"
	"github.com/gin-gonic/gin"
)

// RequireRoleOrPermission aborts with 403 unless the authenticated user holds
// a role with the given name or a permission with the given name through any
// of their roles. Must run after AuthMiddleware.
func RequireRoleOrPermission(name string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		value, exists := ctx.Get(types.ContextUserKey)

		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		user, ok := value.(AuthenticatedUser)

		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user type in context"})
			return
		}

		if !user.HasRole(name) && !user.HasPermission(name) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role or permission"})
			return
		}

		ctx.Next()
	}
}
