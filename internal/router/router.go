package router

import (
	"time"

	"github.com/funnelbase-dev/funnelbase/internal/handlers"
	"github.com/funnelbase-dev/funnelbase/internal/middleware"
	"github.com/funnelbase-dev/funnelbase/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		authed := api.Group("", middleware.AuthMiddleware())
		{
			authed.GET("/dashboard", handlers.GetDashboard)

			authed.GET("/onboarding", handlers.GetOnboarding)
			authed.PUT("/onboarding", handlers.SaveOnboarding)

			authed.GET("/contacts", handlers.ListContacts)
			authed.POST("/contacts", handlers.CreateContact)
			authed.GET("/contacts/:id", handlers.GetContact)
			authed.PUT("/contacts/:id", handlers.UpdateContact)
			authed.DELETE("/contacts/:id", handlers.DeleteContact)

			authed.GET("/pipelines", handlers.ListPipelines)
			authed.POST("/pipelines", handlers.CreatePipeline)
			authed.GET("/pipelines/:id", handlers.GetPipeline)
			authed.PUT("/pipelines/:id", handlers.UpdatePipeline)
			authed.DELETE("/pipelines/:id", handlers.DeletePipeline)
			authed.POST("/pipelines/:id/stages", handlers.CreateStage)

			authed.GET("/stages", handlers.ListStages)
			authed.PUT("/stages/:id", handlers.UpdateStage)
			authed.DELETE("/stages/:id", handlers.DeleteStage)

			// The lead board reads the caller's contacts.
			leads := authed.Group("/leads", middleware.RequireRoleOrPermission(types.PermissionViewLeads))
			{
				leads.GET("", handlers.ListContacts)
				leads.GET("/:id", handlers.GetContact)
			}

			admin := authed.Group("", middleware.RequireRoleOrPermission(types.RoleAdmin))
			{
				admin.GET("/roles-permissions", handlers.ListRolesPermissions)
				admin.POST("/roles", handlers.CreateRole)
				admin.PUT("/roles/:id", handlers.UpdateRole)
				admin.DELETE("/roles/:id", handlers.DeleteRole)

				admin.GET("/users", handlers.ListUsers)
				admin.POST("/users", handlers.CreateManagedUser)
				admin.PUT("/users/:id", handlers.UpdateManagedUser)
				admin.PUT("/users/:id/roles", handlers.AssignUserRoles)
				admin.DELETE("/users/:id", handlers.DeleteManagedUser)
			}
		}
	}

	return r
}
