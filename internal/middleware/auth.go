package middleware

import (
	"net/http"
	"strings"

	"github.com/funnelbase-dev/funnelbase/db"
	"github.com/funnelbase-dev/funnelbase/internal/auth"
	"github.com/funnelbase-dev/funnelbase/internal/models"
	"github.com/funnelbase-dev/funnelbase/internal/types"
	"github.com/gin-gonic/gin"
)

// AuthenticatedUser is the request-scoped actor. Roles carries the user's
// roles with permissions attached, loaded fresh on every request so that
// role or permission changes take effect on the next check.
type AuthenticatedUser struct {
	ID    uint          `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Roles []models.Role `json:"-"`
}

func (u AuthenticatedUser) HasRole(name string) bool {
	user := models.User{Roles: u.Roles}
	return user.HasRole(name)
}

func (u AuthenticatedUser) HasPermission(name string) bool {
	user := models.User{Roles: u.Roles}
	return user.HasPermission(name)
}

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)

		if tokenString == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
			return
		}

		userID, err := auth.ParseUserID(tokenString)

		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		var user models.User

		if err := db.DB.Preload("Roles.Permissions").Where("id = ?", userID).First(&user).Error; err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Roles: user.Roles,
		})
		ctx.Next()
	}
}

// extractToken prefers the Authorization header, falling back to the session
// cookie set by the login handler.
func extractToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")

	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}

		return ""
	}

	cookie, err := ctx.Cookie("token")

	if err != nil {
		return ""
	}

	return cookie
}
