package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Role and permission names referenced by route gates. The seeder creates
// these; the role/permission endpoints may add more at runtime.
const (
	RoleAdmin = "admin"

	PermissionViewLeads   = "view leads"
	PermissionCreateLeads = "create leads"
	PermissionEditLeads   = "edit leads"
	PermissionDeleteLeads = "delete leads"
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
