package router

import (
	"github.com/gin-gonic/gin"

	"github.com/fridgewise/backend/internal/api"
	"github.com/fridgewise/backend/internal/middleware"
)

// SetupRouter configures the application routes. The rate limiter may be nil
// when Redis is unavailable; generation then runs unthrottled.
func SetupRouter(
	authHandler *api.AuthHandler,
	ingredientHandler *api.IngredientHandler,
	recipeHandler *api.RecipeHandler,
	dashboardHandler *api.DashboardHandler,
	validator middleware.TokenValidator,
	generationLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(middleware.CORS())

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		// Ingredient routes
		ingredients := protected.Group("/ingredients")
		{
			ingredients.GET("", ingredientHandler.ListIngredients)
			ingredients.POST("", ingredientHandler.CreateIngredient)
			ingredients.PUT("/:id", ingredientHandler.UpdateIngredient)
			ingredients.DELETE("/:id", ingredientHandler.DeleteIngredient)
			ingredients.POST("/:id/image", ingredientHandler.UploadImage)
		}

		// Recipe routes
		recipes := protected.Group("/recipes")
		{
			recipes.GET("", recipeHandler.ListRecipes)
			recipes.GET("/:id", recipeHandler.GetRecipe)
			recipes.DELETE("/:id", recipeHandler.DeleteRecipe)

			if generationLimiter != nil {
				recipes.POST("/generate", generationLimiter.RateLimitMiddleware(), recipeHandler.Generate)
			} else {
				recipes.POST("/generate", recipeHandler.Generate)
			}
		}

		// Dashboard routes
		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/stats", dashboardHandler.GetStats)
		}
	}

	return router
}
