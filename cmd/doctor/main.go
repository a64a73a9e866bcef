package main

import (
	"context"
	"time"

	"deep-research-be/internal/config"
	pktNats "deep-research-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// Connectivity check for local development: verifies every backing
// service the server needs at boot.
func main() {
	color.Cyan("🩺 deep-research-be doctor\n")
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	color.Yellow("\n[1] PostgreSQL")
	// Raw pgx connection keeps this check independent of the GORM layer.
	conn, err := pgx.Connect(ctx, cfg.Database.Connection)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		var hasVector bool
		err := conn.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')").Scan(&hasVector)
		switch {
		case err != nil:
			color.Red("Query failed: %v", err)
		case hasVector:
			color.Green("OK (pgvector extension present)")
		default:
			color.Red("Connected, but pgvector extension is missing. Run cmd/migrate.")
		}
		conn.Close(ctx)
	}

	color.Yellow("\n[2] NATS")
	pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("OK")
		pub.Close()
	}

	color.Yellow("\n[3] Redis")
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		color.Red("Failed: %v", err)
	} else {
		color.Green("OK")
	}

	color.Yellow("\n[4] API Keys")
	if cfg.Keys.Tavily == "" {
		color.Red("TAVILY_API_KEY not set: web search will return placeholders")
	} else {
		color.Green("Tavily key present")
	}
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		color.Green("Embedding provider: ollama (%s)", cfg.Ai.OllamaModel)
	case "jina":
		if cfg.Keys.Jina == "" {
			color.Red("JINA_API_KEY not set")
		} else {
			color.Green("Embedding provider: jina")
		}
	default:
		if cfg.Keys.GoogleGemini == "" {
			color.Red("GOOGLE_GEMINI_API_KEY not set")
		} else {
			color.Green("Embedding provider: gemini")
		}
	}

	color.Cyan("\nDone.")
}
