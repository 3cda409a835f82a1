package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/printmechecks/server/internal/api"
	"github.com/printmechecks/server/internal/auth"
	"github.com/printmechecks/server/internal/blob"
	"github.com/printmechecks/server/internal/config"
	"github.com/printmechecks/server/internal/postgrid"
	"github.com/printmechecks/server/internal/repository/postgres"
	"github.com/printmechecks/server/internal/sesmail"
	"github.com/printmechecks/server/internal/service/document"
	"github.com/printmechecks/server/internal/service/sendjob"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	blobs, err := blob.New(ctx, cfg.Blob)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	postal := postgrid.NewClient(cfg.PostGrid)
	if postal.Simulated() {
		log.Println("[postgrid] No credentials configured, running in simulation mode")
	}
	mailer := sesmail.NewSender(cfg.Email)
	if mailer.Simulated() {
		log.Println("[ses] No credentials configured, running in simulation mode")
	}

	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}
	if !verifier.Configured() {
		log.Println("[auth] OIDC not configured, requests proceed anonymously")
	}

	limiter, err := api.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}
	if limiter != nil {
		defer limiter.Close()
		log.Println("[ratelimit] Webhook rate limiting enabled")
	}

	docs := document.NewService(postgres.NewDocumentRepo(db), blobs)
	jobs := sendjob.NewService(
		postgres.NewSendJobRepo(db),
		docs,
		blobs,
		postal,
		mailer,
		postgrid.Mode(cfg.PostGrid.SendMode),
		cfg.Webhook.Secret,
	)

	handlers := api.NewHandlers(docs, jobs, postgres.NewUserRepo(db), db, verifier.Configured(), cfg.Server.MaxUploadBytes)
	server := api.NewServer(cfg.Server, handlers, verifier, limiter)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
		errCh <- server.ListenAndServe()
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-done:
		log.Printf("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
