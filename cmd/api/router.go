package api

import (
	"net/http"

	authDelivery "storymail-backend/internal/auth/delivery"
	authUsecase "storymail-backend/internal/auth/usecase"
	emailDelivery "storymail-backend/internal/email/delivery"
	emailUsecase "storymail-backend/internal/email/usecase"
	"storymail-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, emailUc emailUsecase.EmailUsecase, digestUc emailUsecase.DigestUsecase, cfg *config.Config) {
	authHandler := authDelivery.NewAuthHandler(authUc, cfg)
	emailHandler := emailDelivery.NewEmailHandler(emailUc)
	digestHandler := emailDelivery.NewDigestHandler(digestUc)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.GET("/login", authHandler.Login)
			auth.GET("/callback", authHandler.Callback)
			auth.POST("/callback", authHandler.CallbackExchange)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/user", authDelivery.AuthMiddleware(authUc), authHandler.UserInfo)
		}

		// Inbound webhook (called by Postmark, no bearer token)
		api.POST("/postmark/inbound", emailHandler.PostmarkInbound)

		// Email routes (protected)
		protected := api.Group("")
		protected.Use(authDelivery.AuthMiddleware(authUc))
		{
			protected.GET("/categories/stats", emailHandler.CategoryStats)
			protected.GET("/emails", emailHandler.ListEmails)
			protected.GET("/emails/:id", emailHandler.GetEmailByID)
			protected.POST("/chat", emailHandler.Chat)
			protected.POST("/digest", digestHandler.GenerateDigest)
			protected.GET("/dashboard/stats", emailHandler.DashboardStats)
		}
	}
}
