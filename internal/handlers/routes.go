package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board-api/internal/middleware"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth        *AuthHandler
	Task        *TaskHandler
	Interaction *InteractionHandler
	Board       *BoardHandler
	Admin       *AdminHandler
}

// RegisterRoutes mounts the API on r. Session middleware must already be
// installed.
func RegisterRoutes(r *gin.Engine, h Handlers, tasks middleware.TaskFinder) {
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Kanban Board API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
			auth.POST("/password", middleware.RequireAuth(), h.Auth.ChangePassword)
		}

		// Everything below needs a session whose password is not pending reset
		protected := api.Group("")
		protected.Use(middleware.RequireAuth(), middleware.RequirePasswordCurrent())

		// Board routes
		protected.GET("/board", h.Board.GetBoard)
		protected.GET("/stats", h.Board.GetStats)

		// Task routes
		taskAccess := middleware.RequireTaskAccess(tasks)
		taskRoutes := protected.Group("/tasks")
		{
			taskRoutes.GET("", h.Task.ListTasks)
			taskRoutes.POST("", middleware.RequireElevated(), h.Task.CreateTask)
			taskRoutes.POST("/generate", middleware.RequireElevated(), h.Task.GenerateTasks)
			taskRoutes.GET("/:id", taskAccess, h.Task.GetTask)
			taskRoutes.PUT("/:id/progress", taskAccess, h.Task.UpdateProgress)
			taskRoutes.POST("/:id/done", taskAccess, h.Task.CompleteTask)
			taskRoutes.PUT("/:id/stage", taskAccess, h.Task.UpdateStage)
			taskRoutes.GET("/:id/interactions", taskAccess, h.Interaction.ListInteractions)
			taskRoutes.POST("/:id/interactions", taskAccess, h.Interaction.RecordInteraction)
		}

		// Admin routes
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", h.Admin.ListUsers)
			admin.POST("/users", h.Admin.CreateUser)
			admin.PUT("/users/:username/password", h.Admin.ResetPassword)
			admin.POST("/purge", h.Admin.PurgeTasks)
			admin.GET("/export", h.Admin.Export)
		}
	}
}
