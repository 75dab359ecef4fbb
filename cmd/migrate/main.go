package main

import (
	"log"
	"os"

	"ai-research-agent/internal/model"
	"ai-research-agent/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Running AutoMigrate for the document store...")
	if err := db.AutoMigrate(&model.Document{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	if !db.Migrator().HasIndex(&model.Document{}, "idx_documents_collection_key") {
		log.Fatal("Error: unique index idx_documents_collection_key is missing after migration")
	}

	log.Println("Migration complete")
}
