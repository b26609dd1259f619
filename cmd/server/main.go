package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ovo-video-backend/internal/config"
	"ovo-video-backend/internal/database"
	"ovo-video-backend/internal/handler"
	"ovo-video-backend/internal/middleware"
	"ovo-video-backend/internal/repository"
	"ovo-video-backend/internal/service"
	"ovo-video-backend/pkg/logger"
	"ovo-video-backend/pkg/token"
	"ovo-video-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	logger.Init(cfg.Server.LogLevel)
	logger.Info().Msg("Configuration loaded successfully")

	// 2. Initialize database connection
	db := database.Connect(cfg)
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// 3. Initialize repositories
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewRefreshTokenRepo(db)
	profileRepo := repository.NewMemberProfileRepo(db)
	settingRepo := repository.NewSettingRepo(db, cfg.Auth.DefaultSecret)
	captchaRepo := repository.NewCaptchaRepo(db)

	// Warn up front if the signing key is still the stock default
	if _, err := settingRepo.Get(); err != nil {
		logger.Warn().Msg("No settings row found; bearer tokens will be signed with the default secret")
	}

	// 4. Initialize the bearer token codec. The secret is re-read from
	// settings on every use so key rotation needs no restart.
	codec := token.NewCodec(settingRepo.SigningKey)

	// 5. Initialize services
	authService := service.NewAuthService(db, userRepo, tokenRepo, profileRepo, codec, &cfg.Auth)
	captchaService := service.NewCaptchaService(captchaRepo, cfg.Auth.CaptchaExpiry)

	// 6. Start captcha cleanup worker in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go captchaService.StartCleanup(ctx)

	// 7. Setup Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// 8. Setup Gin router
	r := gin.Default()

	// Apply CORS middleware
	r.Use(middleware.CORS(cfg))

	// 9. Register handlers
	authHandler := handler.NewAuthHandler(authService, captchaService)
	captchaHandler := handler.NewCaptchaHandler(captchaService)

	// 10. Define routes
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "ovo-video-backend",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/captcha", captchaHandler.Issue)

		user := api.Group("/user")
		{
			user.POST("/register", authHandler.Register)
			user.POST("/login", authHandler.Login)
			user.POST("/refresh_token", authHandler.Refresh)

			user.GET("/profile", middleware.AuthMiddleware(codec), authHandler.Profile)
		}
	}

	// 11. Setup graceful shutdown
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server...")

	// Stop the cleanup worker
	cancel()
	logger.Info().Msg("Server exited")
}
