package main

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/handlers"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/pkg/logger"
)

// setupRouter wires middleware and routes.
func setupRouter(cfg *config.Config, app *appServices) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(logger.GinLogger())
	r.Use(logger.GinRecovery())
	r.Use(middleware.CORS())

	db := models.GetDB()

	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	authHandler := handlers.NewAuthHandler(db, cfg.JWT.ExpireHour)
	projectHandler := handlers.NewProjectHandler(db, app.queue)
	taskHandler := handlers.NewTaskHandler(db)
	noteHandler := handlers.NewNoteHandler(db)
	userHandler := handlers.NewUserHandler(db)
	systemLogHandler := handlers.NewSystemLogHandler(db)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited against credential stuffing)
		loginLimiter := middleware.NewRateLimiter(1, 5)
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(), authHandler.Login)
			auth.POST("/register", loginLimiter.Middleware(), authHandler.Register)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		protected.Use(middleware.AuditLog())
		{
			protected.GET("/auth/me", authHandler.Me)
			protected.POST("/auth/logout", authHandler.Logout)

			// Projects and membership
			protected.GET("/projects", projectHandler.List)
			protected.POST("/projects", projectHandler.Create)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)
			protected.GET("/projects/:id/members", projectHandler.ListMembers)
			protected.POST("/projects/:id/members", projectHandler.AddMember)
			protected.PUT("/projects/:id/members/:userId", projectHandler.UpdateMemberRole)
			protected.DELETE("/projects/:id/members/:userId", projectHandler.RemoveMember)

			// Tasks
			protected.GET("/projects/:id/tasks", taskHandler.ListByProject)
			protected.POST("/projects/:id/tasks", taskHandler.Create)
			protected.GET("/tasks/:id", taskHandler.GetByID)
			protected.PUT("/tasks/:id", taskHandler.Update)
			protected.DELETE("/tasks/:id", taskHandler.Delete)
			protected.POST("/tasks/:id/subtasks", taskHandler.AddSubtask)
			protected.PUT("/tasks/:id/subtasks/:subtaskId", taskHandler.UpdateSubtask)
			protected.DELETE("/tasks/:id/subtasks/:subtaskId", taskHandler.DeleteSubtask)
			protected.POST("/tasks/:id/attachments", taskHandler.AddAttachment)
			protected.DELETE("/tasks/:id/attachments/:attachmentId", taskHandler.RemoveAttachment)

			// Notes
			protected.GET("/projects/:id/notes", noteHandler.ListByProject)
			protected.POST("/projects/:id/notes", noteHandler.Create)
			protected.GET("/notes/:id", noteHandler.GetByID)
			protected.PUT("/notes/:id", noteHandler.Update)
			protected.DELETE("/notes/:id", noteHandler.Delete)

			// User directory
			protected.GET("/users", userHandler.List)

			// Operation logs
			protected.GET("/system-logs", systemLogHandler.List)
		}
	}

	return r
}
