package main

import (
	"flag"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fridgewise/backend/internal/database"
)

func main() {
	dir := flag.String("dir", "migrations", "Directory containing SQL migration files")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db, *dir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	log.Println("All migrations applied successfully.")
}
