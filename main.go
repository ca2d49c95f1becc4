package main

import (
	"log"

	api "storymail-backend/cmd/api"
	authdomain "storymail-backend/internal/auth/domain"
	authRepo "storymail-backend/internal/auth/repository"
	authUsecase "storymail-backend/internal/auth/usecase"
	emaildomain "storymail-backend/internal/email/domain"
	emailRepo "storymail-backend/internal/email/repository"
	emailUsecase "storymail-backend/internal/email/usecase"
	"storymail-backend/pkg/config"
	"storymail-backend/pkg/database"
	"storymail-backend/pkg/gemini"
	"storymail-backend/pkg/pdf"
	"storymail-backend/pkg/postmark"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &emaildomain.Email{}, &emaildomain.DigestReport{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	emailRepository := emailRepo.NewEmailRepository(db)
	digestRepository := emailRepo.NewDigestReportRepository(db)

	// Initialize external clients
	geminiService := gemini.NewService(cfg.GeminiApiKey)
	postmarkClient := postmark.NewClient(cfg.PostmarkServerToken)
	pdfRenderer := pdf.NewRenderer()

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)
	emailUsecaseInstance := emailUsecase.NewEmailUsecase(emailRepository, digestRepository, userRepository, geminiService)
	digestUsecaseInstance := emailUsecase.NewDigestUsecase(emailRepository, digestRepository, userRepository, geminiService, pdfRenderer, postmarkClient, cfg.DigestFromEmail)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, emailUsecaseInstance, digestUsecaseInstance, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
