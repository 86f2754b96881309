package main

import (
	"log"
	"os"

	"datasense-be/internal/model"
	"datasense-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	defer database.Close(db)

	// 3. Extensions
	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		log.Fatalf("Error: Failed to create vector extension: %v", err)
	}

	// 4. Tables
	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(&model.VideoTranscript{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Indexes AutoMigrate cannot express
	log.Println("Step 3: Creating vector index...")
	indexSQL := `CREATE INDEX IF NOT EXISTS idx_video_transcripts_embedding
		ON video_transcripts USING hnsw (embedding_value vector_cosine_ops);`
	if err := db.Exec(indexSQL).Error; err != nil {
		log.Printf("Warn: Failed to create vector index: %v", err)
	}

	log.Println("Success: database migration completed")
}
