package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fridgewise/backend/config"
	"github.com/fridgewise/backend/internal/api"
	"github.com/fridgewise/backend/internal/database"
	"github.com/fridgewise/backend/internal/middleware"
	"github.com/fridgewise/backend/internal/router"
	"github.com/fridgewise/backend/internal/server"
	"github.com/fridgewise/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// The generation endpoint runs unthrottled when Redis is down
	var generationLimiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		log.Printf("Redis unavailable, generation rate limiting disabled: %v", err)
	} else {
		generationLimiter = middleware.NewGenerationRateLimiter(redisClient)
	}

	// Ingredient photos are optional; the endpoint answers 503 without S3
	var imageService *service.ImageService
	if s3Config, err := config.NewS3Config(context.Background()); err != nil {
		log.Printf("S3 unavailable, ingredient photo upload disabled: %v", err)
	} else {
		imageService = service.NewImageService(s3Config)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	llmService, err := service.NewLLMService(cfg)
	if err != nil {
		log.Fatalf("Failed to create LLM service: %v", err)
	}
	recipeService := service.NewRecipeService(db, llmService)

	authHandler := api.NewAuthHandler(authService)
	ingredientHandler := api.NewIngredientHandler(db, imageService)
	recipeHandler := api.NewRecipeHandler(recipeService)
	dashboardHandler := api.NewDashboardHandler(db)

	engine := router.SetupRouter(authHandler, ingredientHandler, recipeHandler, dashboardHandler, authService, generationLimiter)
	srv := server.New(engine)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	go func() {
		log.Println("Starting server...")
		errChan <- srv.Start(cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
