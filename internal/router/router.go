package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/driftwatch/driftwatch/internal/handlers"
	"github.com/driftwatch/driftwatch/internal/middleware"
	"github.com/driftwatch/driftwatch/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", middleware.AuthMiddleware(), handlers.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.POST("/logout", middleware.AuthMiddleware(), handlers.LogoutUser)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.PATCH("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			projects.GET("/:project_id/dashboard", handlers.GetDashboard)

			// Cloud account endpoints
			projects.POST("/:project_id/accounts", handlers.CreateAccount)
			projects.GET("/:project_id/accounts", handlers.ListAccounts)
			projects.PATCH("/:project_id/accounts/:account_id", handlers.UpdateAccount)
			projects.DELETE("/:project_id/accounts/:account_id", handlers.DeleteAccount)

			// Invariant group endpoints
			projects.POST("/:project_id/groups", handlers.CreateGroup)
			projects.GET("/:project_id/groups", handlers.ListGroups)
			projects.GET("/:project_id/groups/:group_id", handlers.GetGroup)
			projects.PATCH("/:project_id/groups/:group_id", handlers.UpdateGroup)
			projects.DELETE("/:project_id/groups/:group_id", handlers.DeleteGroup)
			projects.POST("/:project_id/groups/:group_id/evaluate", handlers.EvaluateGroupNow)

			// Check endpoints
			projects.POST("/:project_id/groups/:group_id/checks", handlers.CreateCheck)
			projects.GET("/:project_id/groups/:group_id/checks", handlers.ListChecks)
			projects.PATCH("/:project_id/groups/:group_id/checks/:check_id", handlers.UpdateCheck)
			projects.DELETE("/:project_id/groups/:group_id/checks/:check_id", handlers.DeleteCheck)

			// Evaluation history endpoints
			projects.GET("/:project_id/groups/:group_id/runs", handlers.ListRuns)
			projects.GET("/:project_id/groups/:group_id/runs/:run_id", handlers.ListRunResults)
		}
	}

	return r
}
