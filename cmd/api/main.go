package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trolukyanrl/jorhatx/internal/config"
	"github.com/trolukyanrl/jorhatx/internal/database"
	"github.com/trolukyanrl/jorhatx/internal/handler"
	"github.com/trolukyanrl/jorhatx/internal/middleware"
	"github.com/trolukyanrl/jorhatx/internal/models"
	"github.com/trolukyanrl/jorhatx/internal/repository"
	"github.com/trolukyanrl/jorhatx/internal/router"
	"github.com/trolukyanrl/jorhatx/internal/service"
	cloud "github.com/trolukyanrl/jorhatx/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Listing{},
		&models.WishlistEntry{},
		&models.Upload{},
		&models.Thread{},
		&models.Message{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	uploadService := service.NewUploadService(uploadRepo, uploader, int64(cfg.UploadMaxMB)<<20, logger)
	authService := service.NewAuthService(userRepo, redisClient, service.AuthTokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		OTPTTL:        cfg.OTPTTL,
	}, service.NewLogOTPSender(logger), validate, logger)
	adminUserService := service.NewAdminUserService(userRepo, validate, logger)
	listingService := service.NewListingService(listingRepo, categoryRepo, uploadService.ViewURL, validate, logger)
	categoryService := service.NewCategoryService(categoryRepo, validate, logger)
	wishlistService := service.NewWishlistService(wishlistRepo, listingRepo, uploadService.ViewURL, validate, logger)
	chatService := service.NewChatService(threadRepo, messageRepo, redisClient, service.ChatOptions{
		PageSize:     cfg.ChatPageSize,
		TypingWindow: cfg.TypingWindow,
		CacheTTL:     cfg.ChatCacheTTL,
	}, validate, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(authService, logger)
	adminUserHandler := handler.NewAdminUserHandler(adminUserService, logger)
	listingHandler := handler.NewListingHandler(listingService, logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, logger)
	wishlistHandler := handler.NewWishlistHandler(wishlistService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	uploadHandler := handler.NewUploadHandler(uploadService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      authHandler,
		UserHandler:      userHandler,
		AdminUserHandler: adminUserHandler,
		ListingHandler:   listingHandler,
		CategoryHandler:  categoryHandler,
		WishlistHandler:  wishlistHandler,
		ChatHandler:      chatHandler,
		UploadHandler:    uploadHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
