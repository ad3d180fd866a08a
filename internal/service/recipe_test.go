package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fridgewise/backend/config"
	"github.com/fridgewise/backend/internal/model"
)

func setupRecipeDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	createIngredients := `CREATE TABLE ingredients (
           id TEXT PRIMARY KEY,
           created_at DATETIME,
           updated_at DATETIME,
           deleted_at DATETIME,
           name TEXT,
           quantity TEXT,
           category TEXT,
           purchase_date DATETIME,
           expiry_date DATETIME,
           image_url TEXT,
           user_id TEXT
   );`
	if err := db.Exec(createIngredients).Error; err != nil {
		t.Fatalf("failed to create ingredients table: %v", err)
	}
	createRecipes := `CREATE TABLE recipes (
           id TEXT PRIMARY KEY,
           created_at DATETIME,
           updated_at DATETIME,
           deleted_at DATETIME,
           title TEXT,
           description TEXT,
           ingredients TEXT,
           prep_time TEXT,
           difficulty TEXT,
           image TEXT,
           user_id TEXT
   );`
	if err := db.Exec(createRecipes).Error; err != nil {
		t.Fatalf("failed to create recipes table: %v", err)
	}
	return db
}

func newTestLLM(t *testing.T, url string) *LLMService {
	t.Helper()
	llm, err := NewLLMService(&config.Config{
		AIAPIKey: "test-key",
		AIAPIURL: url,
		AIModel:  "test-model",
	})
	if err != nil {
		t.Fatalf("failed to create llm service: %v", err)
	}
	return llm
}

func seedIngredients(t *testing.T, db *gorm.DB, userID uuid.UUID, names ...string) {
	t.Helper()
	now := time.Now()
	for i, name := range names {
		ing := model.Ingredient{
			ID:         uuid.New(),
			Name:       name,
			ExpiryDate: now.AddDate(0, 0, i+1),
			UserID:     userID,
		}
		if err := db.Create(&ing).Error; err != nil {
			t.Fatalf("failed to seed ingredient %s: %v", name, err)
		}
	}
}

const validRecipesContent = `Here are your recipes:
[
  {"title": "Milk Frittata", "description": "Quick and light.", "ingredients": ["Milk", "Eggs"], "prep_time": "20 min", "difficulty": "Easy"},
  {"title": "Spinach Curry", "description": "Warming weeknight dinner.", "ingredients": ["Spinach"], "prep_time": "30 min", "difficulty": "medium"},
  {"title": "Cheese Toast", "description": "", "ingredients": ["Cheddar"], "prep_time": "10 min", "difficulty": "Easy"}
]
Enjoy!`

func completionResponse(content string) string {
	msg, _ := json.Marshal(content)
	return fmt.Sprintf(`{"choices":[{"message":{"content":%s}}]}`, msg)
}

func TestGenerateNoIngredientsShortCircuits(t *testing.T) {
	db := setupRecipeDB(t)

	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, completionResponse(validRecipesContent))
	}))
	defer ts.Close()

	svc := NewRecipeService(db, newTestLLM(t, ts.URL))

	_, err := svc.GenerateFromInventory(context.Background(), uuid.New())
	if err != ErrNoIngredients {
		t.Fatalf("expected ErrNoIngredients, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("model invoked %d times for empty inventory", calls)
	}
}

func TestGenerateBoundedFetchAndExpiringPrefix(t *testing.T) {
	db := setupRecipeDB(t)
	userID := uuid.New()

	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("ingredient-%02d", i)
	}
	seedIngredients(t, db, userID, names...)

	var captured Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		fmt.Fprint(w, completionResponse(validRecipesContent))
	}))
	defer ts.Close()

	svc := NewRecipeService(db, newTestLLM(t, ts.URL))
	if _, err := svc.GenerateFromInventory(context.Background(), userID); err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	var userPrompt string
	for _, m := range captured.Messages {
		if m.Role == "user" {
			userPrompt = m.Content
		}
	}

	wantAvailable := "Available ingredients: ingredient-00, ingredient-01, ingredient-02, ingredient-03, ingredient-04, ingredient-05, ingredient-06, ingredient-07, ingredient-08, ingredient-09"
	if !strings.Contains(userPrompt, wantAvailable) {
		t.Fatalf("prompt missing bounded available list:\n%s", userPrompt)
	}
	wantExpiring := "Ingredients expiring soon: ingredient-00, ingredient-01, ingredient-02, ingredient-03, ingredient-04\n"
	if !strings.Contains(userPrompt, wantExpiring) {
		t.Fatalf("prompt missing expiring prefix:\n%s", userPrompt)
	}
	if strings.Contains(userPrompt, "ingredient-10") || strings.Contains(userPrompt, "ingredient-11") {
		t.Fatalf("prompt leaked ingredients beyond the fetch limit:\n%s", userPrompt)
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	db := setupRecipeDB(t)
	userID := uuid.New()
	seedIngredients(t, db, userID, "Milk", "Eggs", "Spinach", "Cheddar")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionResponse(validRecipesContent))
	}))
	defer ts.Close()

	svc := NewRecipeService(db, newTestLLM(t, ts.URL))
	recipes, err := svc.GenerateFromInventory(context.Background(), userID)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if len(recipes) != 3 {
		t.Fatalf("expected 3 recipes, got %d", len(recipes))
	}

	first := recipes[0]
	if first.Title != "Milk Frittata" {
		t.Errorf("title not preserved: %q", first.Title)
	}
	if first.Description != "Quick and light." {
		t.Errorf("description not preserved: %q", first.Description)
	}
	if len(first.Ingredients) != 2 || first.Ingredients[0] != "Milk" || first.Ingredients[1] != "Eggs" {
		t.Errorf("ingredient order not preserved: %v", first.Ingredients)
	}
	if first.PrepTime != "20 min" {
		t.Errorf("prep time not preserved: %q", first.PrepTime)
	}
	if recipes[1].Difficulty != model.DifficultyMedium {
		t.Errorf("difficulty not normalized: %q", recipes[1].Difficulty)
	}

	for _, r := range recipes {
		if r.UserID != userID {
			t.Errorf("user id not stamped on %q", r.Title)
		}
		if r.Image != nil {
			t.Errorf("image should be null on %q", r.Title)
		}
	}

	var count int64
	if err := db.Model(&model.Recipe{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count recipes: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 persisted rows, got %d", count)
	}
}

func TestGenerateParseFailureWritesNothing(t *testing.T) {
	db := setupRecipeDB(t)
	userID := uuid.New()
	seedIngredients(t, db, userID, "Milk")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionResponse("I cannot help with that."))
	}))
	defer ts.Close()

	svc := NewRecipeService(db, newTestLLM(t, ts.URL))
	if _, err := svc.GenerateFromInventory(context.Background(), userID); err != ErrResponseParse {
		t.Fatalf("expected ErrResponseParse, got %v", err)
	}

	var count int64
	if err := db.Model(&model.Recipe{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count recipes: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero rows after parse failure, got %d", count)
	}
}

func TestParseRecipeResponseExtractsArray(t *testing.T) {
	content := "Sure! Here you go:\n[{\"title\": \"A\", \"difficulty\": \"Easy\"}]\nBon appetit."
	parsed, err := parseRecipeResponse(content)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Title != "A" {
		t.Fatalf("unexpected parse result: %+v", parsed)
	}
}

func TestParseRecipeResponseWholeText(t *testing.T) {
	parsed, err := parseRecipeResponse(`  [{"title": "B", "difficulty": "Hard"}]  `)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Title != "B" {
		t.Fatalf("unexpected parse result: %+v", parsed)
	}
}

func TestParseRecipeResponseRejectsProse(t *testing.T) {
	if _, err := parseRecipeResponse("I cannot help with that."); err != ErrResponseParse {
		t.Fatalf("expected ErrResponseParse, got %v", err)
	}
}

func TestParseRecipeResponseDropsUnparseableElements(t *testing.T) {
	parsed, err := parseRecipeResponse(`[{"title": 42}, {"title": "C", "difficulty": "Easy"}]`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Title != "C" {
		t.Fatalf("malformed element not dropped: %+v", parsed)
	}
}

func TestCoerceRecipeValidation(t *testing.T) {
	if _, ok := coerceRecipe(recipePayload{Title: "  ", Difficulty: "Easy"}); ok {
		t.Error("empty title accepted")
	}
	if _, ok := coerceRecipe(recipePayload{Title: "X", Difficulty: "Impossible"}); ok {
		t.Error("out-of-enum difficulty accepted")
	}
	recipe, ok := coerceRecipe(recipePayload{Title: "X", Difficulty: " HARD "})
	if !ok || recipe.Difficulty != model.DifficultyHard {
		t.Errorf("difficulty not normalized: %+v ok=%v", recipe, ok)
	}
}

func TestListRecipesNewestFirst(t *testing.T) {
	db := setupRecipeDB(t)
	userID := uuid.New()

	older := model.Recipe{ID: uuid.New(), Title: "Older", Difficulty: model.DifficultyEasy, UserID: userID, CreatedAt: time.Now().Add(-time.Hour)}
	newer := model.Recipe{ID: uuid.New(), Title: "Newer", Difficulty: model.DifficultyEasy, UserID: userID, CreatedAt: time.Now()}
	other := model.Recipe{ID: uuid.New(), Title: "Foreign", Difficulty: model.DifficultyEasy, UserID: uuid.New(), CreatedAt: time.Now()}
	for _, r := range []model.Recipe{older, newer, other} {
		if err := db.Create(&r).Error; err != nil {
			t.Fatalf("failed to seed recipe: %v", err)
		}
	}

	svc := NewRecipeService(db, nil)
	recipes, err := svc.ListRecipes(context.Background(), userID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}
	if recipes[0].Title != "Newer" || recipes[1].Title != "Older" {
		t.Fatalf("wrong order: %s, %s", recipes[0].Title, recipes[1].Title)
	}
}

