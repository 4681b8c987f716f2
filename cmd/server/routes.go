package main

import (
	"github.com/devtrackhq/devtrack/backend/internal/handlers"
	"github.com/devtrackhq/devtrack/backend/internal/middleware"
	"github.com/devtrackhq/devtrack/backend/internal/models"
	"github.com/devtrackhq/devtrack/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential-guessing surfaces
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	db := models.GetDB()
	userHandler := handlers.NewUserHandler(db)
	projectHandler := handlers.NewProjectHandler(db)
	collaboratorHandler := handlers.NewCollaboratorHandler(db)
	invitationHandler := handlers.NewInvitationHandler(db, svc.taskQueue)
	systemLogHandler := handlers.NewSystemLogHandler(db)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		protected.Use(middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// User directory
			protected.GET("/users/search", userHandler.Search)

			// Projects
			protected.GET("/projects", projectHandler.List)
			protected.POST("/projects", projectHandler.Create)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)

			// Collaborators
			protected.GET("/projects/:id/collaborators", collaboratorHandler.List)
			protected.POST("/projects/:id/collaborators", collaboratorHandler.Add)
			protected.PUT("/projects/:id/collaborators/:memberID", collaboratorHandler.UpdateRole)
			protected.DELETE("/projects/:id/collaborators/:memberID", collaboratorHandler.Remove)

			// Invitations
			protected.GET("/projects/:id/invitations", invitationHandler.ListByProject)
			protected.POST("/projects/:id/invitations", invitationHandler.Create)
			protected.POST("/invitations/:id/resend", invitationHandler.Resend)
			protected.POST("/invitations/:id/cancel", invitationHandler.Cancel)
			protected.POST("/invitations/accept/:token", invitationHandler.Accept)
			protected.POST("/invitations/decline/:token", invitationHandler.Decline)

			// Personal dashboards
			protected.GET("/my/invitations", invitationHandler.MyInvitations)
			protected.GET("/my/collaborations", collaboratorHandler.MyCollaborations)

			// System logs (global admin only)
			admin := protected.Group("", middleware.AdminRequired())
			{
				admin.GET("/system-logs", systemLogHandler.List)
				admin.GET("/system-logs/modules", systemLogHandler.GetModules)
				admin.GET("/system-logs/retention", systemLogHandler.GetRetention)
				admin.PUT("/system-logs/retention", systemLogHandler.SetRetention)
			}
		}
	}
}
