package main

import (
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fridgewise/backend/internal/model"
	"github.com/fridgewise/backend/internal/models"
)

// Seeds a demo user with a fridge of ingredients at varying expiry distances.
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("demopassword123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         "Demo User",
		Email:        "demo@example.com",
		PasswordHash: string(hashedPassword),
	}
	if err := db.Where("email = ?", user.Email).FirstOrCreate(&user).Error; err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}

	now := time.Now()
	items := []struct {
		name     string
		quantity string
		category string
		daysLeft int
	}{
		{"Milk", "1 L", "Dairy", 1},
		{"Chicken Breast", "500 g", "Meat", 2},
		{"Spinach", "200 g", "Vegetables", 2},
		{"Eggs", "12 pcs", "Dairy", 5},
		{"Tomatoes", "6 pcs", "Vegetables", 4},
		{"Cheddar", "250 g", "Dairy", 14},
		{"Rice", "1 kg", "Pantry", 180},
		{"Yogurt", "500 g", "Dairy", -1},
	}

	for _, item := range items {
		ingredient := model.Ingredient{
			ID:           uuid.New(),
			Name:         item.name,
			Quantity:     item.quantity,
			Category:     item.category,
			PurchaseDate: now.AddDate(0, 0, -2),
			ExpiryDate:   now.AddDate(0, 0, item.daysLeft),
			UserID:       user.ID,
		}
		if err := db.Create(&ingredient).Error; err != nil {
			log.Fatalf("Failed to create ingredient %s: %v", item.name, err)
		}
	}

	log.Printf("Seeded demo user %s with %d ingredients", user.Email, len(items))
}
