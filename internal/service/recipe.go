package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fridgewise/backend/internal/database"
	"github.com/fridgewise/backend/internal/model"
)

const (
	// inventoryFetchLimit caps how many ingredients one generation cycle sees
	inventoryFetchLimit = 10
	// expiringPrefixSize is how many of the soonest-expiring ingredients get
	// called out separately in the prompt
	expiringPrefixSize = 5
)

// listRetryPolicy covers recipe list reads, which can hit a stale schema
// cache right after migrations.
var listRetryPolicy = database.RetryPolicy{
	MaxRetries: 3,
	Backoff:    database.LinearBackoff(time.Second),
	Retryable:  database.IsSchemaCacheError,
}

// RecipeService runs the generation cycle and serves recipe reads
type RecipeService struct {
	db  *gorm.DB
	llm *LLMService
}

func NewRecipeService(db *gorm.DB, llm *LLMService) *RecipeService {
	return &RecipeService{
		db:  db,
		llm: llm,
	}
}

// recipePayload is the shape each element of the model's JSON array is
// expected to have.
type recipePayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	PrepTime    string   `json:"prep_time"`
	Difficulty  string   `json:"difficulty"`
}

// GenerateFromInventory runs one generation cycle for the user: fetch the
// soonest-expiring ingredients, ask the model for recipes, parse and validate
// the reply, persist the batch, and return the stored rows.
func (s *RecipeService) GenerateFromInventory(ctx context.Context, userID uuid.UUID) ([]model.Recipe, error) {
	var ingredients []model.Ingredient
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("expiry_date asc").
		Limit(inventoryFetchLimit).
		Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch ingredients: %w", err)
	}

	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}

	log.Printf("[RecipeService] Found %d ingredients for user %s", len(ingredients), userID)

	available := make([]string, len(ingredients))
	for i, ing := range ingredients {
		available[i] = ing.Name
	}
	// The expiring-soon list is the positional head of the expiry-sorted
	// fetch, not a recomputed status filter.
	prefix := expiringPrefixSize
	if len(available) < prefix {
		prefix = len(available)
	}
	expiring := available[:prefix]

	content, err := s.llm.GenerateRecipes(available, expiring)
	if err != nil {
		return nil, err
	}

	parsed, err := parseRecipeResponse(content)
	if err != nil {
		return nil, err
	}

	recipes := make([]model.Recipe, 0, len(parsed))
	for _, p := range parsed {
		recipe, ok := coerceRecipe(p)
		if !ok {
			log.Printf("[RecipeService] Dropping malformed recipe element: %+v", p)
			continue
		}
		recipe.ID = uuid.New()
		recipe.UserID = userID
		recipe.Image = nil
		recipes = append(recipes, recipe)
	}
	if len(recipes) == 0 {
		return nil, ErrResponseParse
	}

	if err := s.db.WithContext(ctx).Create(&recipes).Error; err != nil {
		log.Printf("[RecipeService] Failed to save recipes for user %s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrPersist, err)
	}

	log.Printf("[RecipeService] Saved %d recipes for user %s", len(recipes), userID)
	return recipes, nil
}

// parseRecipeResponse extracts the recipe array from the model's free-text
// reply. It takes the substring from the first '[' to the last ']' when one
// exists, and otherwise tries the whole trimmed text as JSON.
func parseRecipeResponse(content string) ([]recipePayload, error) {
	raw := strings.TrimSpace(content)
	if start := strings.Index(content, "["); start >= 0 {
		if end := strings.LastIndex(content, "]"); end > start {
			raw = content[start : end+1]
		}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		log.Printf("[RecipeService] Error parsing AI response: %v", err)
		log.Printf("[RecipeService] AI content: %s", content)
		return nil, ErrResponseParse
	}

	payloads := make([]recipePayload, 0, len(elements))
	for _, el := range elements {
		var p recipePayload
		if err := json.Unmarshal(el, &p); err != nil {
			log.Printf("[RecipeService] Dropping unparseable recipe element: %v", err)
			continue
		}
		payloads = append(payloads, p)
	}
	if len(payloads) == 0 {
		return nil, ErrResponseParse
	}
	return payloads, nil
}

// coerceRecipe validates one parsed element. The title must be non-empty and
// the difficulty one of Easy, Medium, Hard (case-insensitive).
func coerceRecipe(p recipePayload) (model.Recipe, bool) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return model.Recipe{}, false
	}

	var difficulty string
	switch strings.ToLower(strings.TrimSpace(p.Difficulty)) {
	case "easy":
		difficulty = model.DifficultyEasy
	case "medium":
		difficulty = model.DifficultyMedium
	case "hard":
		difficulty = model.DifficultyHard
	default:
		return model.Recipe{}, false
	}

	return model.Recipe{
		Title:       title,
		Description: p.Description,
		Ingredients: model.JSONBStringArray(p.Ingredients),
		PrepTime:    p.PrepTime,
		Difficulty:  difficulty,
	}, true
}

// ListRecipes returns the user's recipes newest first
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID) ([]model.Recipe, error) {
	var recipes []model.Recipe
	err := listRetryPolicy.Do(func() error {
		recipes = recipes[:0]
		return s.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at desc").
			Find(&recipes).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe returns one of the user's recipes by id
func (s *RecipeService) GetRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).
		First(&recipe, "id = ? AND user_id = ?", recipeID, userID).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// DeleteRecipe removes one of the user's recipes
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", recipeID, userID).
		Delete(&model.Recipe{}).Error
}
