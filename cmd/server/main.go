package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board-api/internal/board"
	"github.com/yukikurage/kanban-board-api/internal/config"
	"github.com/yukikurage/kanban-board-api/internal/constants"
	"github.com/yukikurage/kanban-board-api/internal/database"
	"github.com/yukikurage/kanban-board-api/internal/handlers"
	"github.com/yukikurage/kanban-board-api/internal/repository"
	"github.com/yukikurage/kanban-board-api/internal/services"
	"github.com/yukikurage/kanban-board-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	hasher, err := utils.NewPasswordHasher(cfg.PasswordHashScheme)
	if err != nil {
		log.Fatalf("Failed to configure password hashing: %v", err)
	}

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)

	var drafter services.DraftGenerator
	if cfg.OpenAIAPIKey != "" {
		drafter = services.NewAIService(cfg.OpenAIAPIKey)
	}

	authService := services.NewAuthService(userRepo, hasher, cfg.DefaultCollaboratorPassword)
	taskService := services.NewTaskService(taskRepo, authService, drafter)
	ledgerService := services.NewLedgerService(taskRepo, interactionRepo, cfg.MaxEvidenceBytes)
	boardService := services.NewBoardService(taskRepo, board.Thresholds{
		DueSoonDays:     cfg.DueSoonDays,
		CardWarningDays: cfg.CardWarningDays,
	})
	exportService := services.NewExportService(repository.NewStore(db))

	if cfg.BootstrapAdminUsername != "" {
		created, err := authService.EnsureBootstrapAdmin(context.Background(), cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
		if err != nil {
			log.Fatalf("Failed to seed admin user: %v", err)
		}
		if created {
			log.Printf("Created admin user %q", cfg.BootstrapAdminUsername)
		}
	}

	// Initialize Gin router
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxEvidenceBytes + 1<<20

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // username (empty for default user)
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAgeSecond,
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Task:        handlers.NewTaskHandler(taskService, boardService),
		Interaction: handlers.NewInteractionHandler(ledgerService, cfg.MaxEvidenceBytes),
		Board:       handlers.NewBoardHandler(boardService),
		Admin:       handlers.NewAdminHandler(authService, taskService, exportService),
	}, taskService)

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
