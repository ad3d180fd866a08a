package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fridgewise/backend/internal/service"
)

// RecipeHandler serves recipe reads and the generation endpoint
type RecipeHandler struct {
	recipeService *service.RecipeService
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
	}
}

// Generate runs one generation cycle for the authenticated user and returns
// the persisted recipes.
func (h *RecipeHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipes, err := h.recipeService.GenerateFromInventory(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoIngredients) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[RecipeHandler] Generation failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": generationErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// generationErrorMessage derives the client-facing message. Store errors are
// logged in full but never echoed back.
func generationErrorMessage(err error) string {
	if errors.Is(err, service.ErrPersist) {
		return service.ErrPersist.Error()
	}
	return err.Error()
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[RecipeHandler] Failed to list recipes for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), userID, recipeID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, recipeID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe deleted successfully",
		"id":      recipeID.String(),
	})
}

// currentUserID pulls the authenticated user id set by the auth middleware
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}

	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}

	return userID, true
}
