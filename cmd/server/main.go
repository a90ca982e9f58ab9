package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tigertix/ticket-assistant/internal/booking"
	"github.com/tigertix/ticket-assistant/internal/config"
	"github.com/tigertix/ticket-assistant/internal/database"
	"github.com/tigertix/ticket-assistant/internal/handler"
	"github.com/tigertix/ticket-assistant/internal/llm"
	"github.com/tigertix/ticket-assistant/internal/queue"
	"github.com/tigertix/ticket-assistant/internal/repository"
	"github.com/tigertix/ticket-assistant/internal/router"
)

func main() {
	// A local .env is convenient in development; absence is fine.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.InitSchema(ctx, db, "mysql"); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	eventRepo := repository.NewEventRepo(db)
	userRepo := repository.NewUserRepo(db)

	// Without an API key the resolver runs on the fallback parser alone.
	var provider llm.Provider
	if cfg.GeminiAPIKey != "" {
		provider = llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
	} else {
		log.Printf("GEMINI_API_KEY not set; intent resolution uses the fallback parser only")
	}
	resolver := llm.NewResolver(provider)

	bookings := booking.NewService(eventRepo)

	// The consumer keeps its own reconnect loop; it never takes the
	// API down with it.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:    cfg,
		Redis:  rdb,
		Auth:   handler.NewAuthHandler(cfg, userRepo),
		Events: handler.NewEventHandler(eventRepo),
		Chat:   handler.NewChatHandler(resolver, bookings, eventRepo),
		Admin:  handler.NewAdminEventHandler(eventRepo),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
