package main

import (
	"log"
	"os"

	"deep-research-be/internal/model"
	"deep-research-be/pkg/database"

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
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	// 3. Pre-Migration: extensions GORM AutoMigrate cannot create itself
	log.Println("Step 1: Setting up extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.Document{},
		&model.GraphNode{},
		&model.GraphNodeEmbedding{},
		&model.NotificationType{},
		&model.Notification{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: indexes and views
	log.Println("Step 3: Creating vector index and views...")

	postMigrationSQL := []string{
		// IVFFlat index keeps per-label cosine search fast once the graph grows.
		`CREATE INDEX IF NOT EXISTS idx_graph_node_embeddings_vector
		 ON graph_node_embeddings USING ivfflat (embedding_value vector_cosine_ops) WITH (lists = 100);`,

		`CREATE INDEX IF NOT EXISTS idx_graph_node_embeddings_label
		 ON graph_node_embeddings (label);`,

		// View: searchable graph chunks joined to their owning node
		`CREATE OR REPLACE VIEW semantic_searchable_graph_chunks AS
		 SELECT gn.id AS node_id, gn.label, gn.name, gne.document, gne.embedding_value AS embedding, gn.user_id
		 FROM graph_nodes gn JOIN graph_node_embeddings gne ON gn.id = gne.node_id
		 WHERE gn.deleted_at IS NULL;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	// 6. Seed notification type registry
	log.Println("Step 4: Seeding notification types...")

	notificationTypes := []model.NotificationType{
		{
			Code:        "RESEARCH_COMPLETED",
			DisplayName: "Research Completed",
			Template:    "Your research report \"{title}\" is ready.",
			IsActive:    true,
		},
		{
			Code:        "SYSTEM_BROADCAST",
			DisplayName: "System Announcement",
			Template:    "{message}",
			IsActive:    true,
		},
	}

	for _, nt := range notificationTypes {
		if err := db.Where(model.NotificationType{Code: nt.Code}).FirstOrCreate(&nt).Error; err != nil {
			log.Printf("Warn: Failed to seed notification type %s: %v", nt.Code, err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
