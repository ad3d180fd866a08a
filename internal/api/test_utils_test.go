package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fridgewise/backend/config"
	"github.com/fridgewise/backend/internal/middleware"
	"github.com/fridgewise/backend/internal/service"
)

// testEnv wires the handlers against an in-memory database the way the real
// router does.
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupTestEnv(t *testing.T, llmURL string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	statements := []string{
		`CREATE TABLE users (
           id TEXT PRIMARY KEY,
           created_at DATETIME,
           updated_at DATETIME,
           deleted_at DATETIME,
           name TEXT,
           email TEXT UNIQUE,
           password_hash TEXT
   );`,
		`CREATE TABLE ingredients (
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
   );`,
		`CREATE TABLE recipes (
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
   );`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to create test schema: %v", err)
		}
	}

	authService := service.NewAuthService(db, "test-secret")
	llm, err := service.NewLLMService(&config.Config{
		AIAPIKey: "test-key",
		AIAPIURL: llmURL,
		AIModel:  "test-model",
	})
	if err != nil {
		t.Fatalf("failed to create llm service: %v", err)
	}
	recipeService := service.NewRecipeService(db, llm)

	authHandler := NewAuthHandler(authService)
	ingredientHandler := NewIngredientHandler(db, nil)
	recipeHandler := NewRecipeHandler(recipeService)
	dashboardHandler := NewDashboardHandler(db)

	r := gin.New()
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))

	ingredients := protected.Group("/ingredients")
	ingredients.GET("", ingredientHandler.ListIngredients)
	ingredients.POST("", ingredientHandler.CreateIngredient)
	ingredients.PUT("/:id", ingredientHandler.UpdateIngredient)
	ingredients.DELETE("/:id", ingredientHandler.DeleteIngredient)
	ingredients.POST("/:id/image", ingredientHandler.UploadImage)

	recipes := protected.Group("/recipes")
	recipes.GET("", recipeHandler.ListRecipes)
	recipes.GET("/:id", recipeHandler.GetRecipe)
	recipes.DELETE("/:id", recipeHandler.DeleteRecipe)
	recipes.POST("/generate", recipeHandler.Generate)

	protected.GET("/dashboard/stats", dashboardHandler.GetStats)

	return &testEnv{router: r, db: db, auth: authService}
}

// newTestUser registers a user and returns a valid bearer token and the id
func (e *testEnv) newTestUser(t *testing.T, email string) (string, uuid.UUID) {
	t.Helper()
	token, err := e.auth.Register("Test User", email, "password123")
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	claims, err := e.auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate test token: %v", err)
	}
	return token, claims.UserID
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

// completionResponse wraps content as a chat-completion reply from the gateway
func completionResponse(t *testing.T, content string) string {
	t.Helper()
	msg, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("failed to marshal content: %v", err)
	}
	return `{"choices":[{"message":{"content":` + string(msg) + `}}]}`
}
