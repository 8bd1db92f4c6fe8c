package main // Entry point package

import (
	"context" // context for migration/seed calls
	"log"     // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/document-gateway/internal/config"     // Internal config loader
	"github.com/iliyamo/document-gateway/internal/database"   // MySQL connection, migrations, seed
	"github.com/iliyamo/document-gateway/internal/handler"    // HTTP handlers
	"github.com/iliyamo/document-gateway/internal/middleware" // cache and rate limit middleware
	"github.com/iliyamo/document-gateway/internal/queue"      // worker RPC client
	"github.com/iliyamo/document-gateway/internal/repository" // DB repositories
	"github.com/iliyamo/document-gateway/internal/router"     // route table and registration
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(ctx, db, cfg.BcryptCost); err != nil {
		log.Fatalf("seed: %v", err)
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tokens := repository.NewTokenRepo(db)
	docs := repository.NewDocumentRepo(db)
	jobs := repository.NewIngestionRepo(db)
	workerClient := queue.NewRPCClient(cfg.AMQPURL, cfg.IngestionQueue, cfg.RPCTimeout)

	// Redis is optional: a nil client turns cache and rate limit into
	// pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limit disabled")
	}
	cacheMW := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	rateMW := middleware.NewRateLimit(config.LoadRateLimitConfig(), rdb)

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, roles, tokens),
		Users:     handler.NewUsersHandler(users, roles),
		Documents: handler.NewDocumentsHandler(docs, cfg.UploadDir),
		Ingestion: handler.NewIngestionHandler(jobs, workerClient),
	}

	e := echo.New()
	router.Register(e, router.Routes(h, rateMW, cacheMW), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
