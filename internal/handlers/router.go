package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/doubt-service/internal/auth"
	"github.com/SAP-F-2025/doubt-service/internal/models"
	"github.com/SAP-F-2025/doubt-service/internal/repositories"
	"github.com/SAP-F-2025/doubt-service/internal/services"
	"github.com/SAP-F-2025/doubt-service/internal/utils"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	doubtHandler   *DoubtHandler
	aiHandler      *AIHandler
	authMiddleware *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokens *auth.TokenManager,
	logger utils.Logger,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewJWTAuthMiddleware(tokens, userRepo)

	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), logger),
		doubtHandler:   NewDoubtHandler(serviceManager.Doubt(), serviceManager.Export(), logger),
		aiHandler:      NewAIHandler(serviceManager.Suggestion(), logger),
		authMiddleware: authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes - register and login are public
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", hm.authHandler.Register)
			authRoutes.POST("/login", hm.authHandler.Login)
			authRoutes.GET("/me", hm.authMiddleware.AuthMiddleware(), hm.authHandler.Me)
		}

		// Doubt routes - all require authentication
		doubts := v1.Group("/doubts")
		doubts.Use(hm.authMiddleware.AuthMiddleware())
		{
			// Create doubts - Students only
			doubts.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.doubtHandler.CreateDoubt)

			// View doubts - All authenticated users (visibility enforced in the service)
			doubts.GET("", hm.doubtHandler.ListDoubts)
			doubts.GET("/search", hm.doubtHandler.SearchDoubts)
			doubts.GET("/:id", hm.doubtHandler.GetDoubt)

			// Modify doubts - ownership and lifecycle enforced in the service
			doubts.PUT("/:id", hm.doubtHandler.UpdateDoubt)
			doubts.DELETE("/:id", hm.doubtHandler.DeleteDoubt)
			doubts.POST("/:id/resolve", hm.doubtHandler.ResolveDoubt)

			// Answer doubts - Instructors only
			doubts.POST("/:id/answers", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor), hm.doubtHandler.CreateAnswer)

			// Export - Instructors only
			doubts.GET("/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor), hm.doubtHandler.ExportDoubts)
		}

		// AI routes - Instructors only
		ai := v1.Group("/ai")
		ai.Use(hm.authMiddleware.AuthMiddleware(), hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor))
		{
			ai.POST("/suggest-answer", hm.aiHandler.SuggestAnswer)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "doubt-service",
		})
	})
}
