package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ymoriya/panedash/internal/config"
	"github.com/ymoriya/panedash/internal/database"
	"github.com/ymoriya/panedash/internal/handler"
	custommw "github.com/ymoriya/panedash/internal/middleware"
	"github.com/ymoriya/panedash/internal/queue"
	"github.com/ymoriya/panedash/internal/repository"
	"github.com/ymoriya/panedash/internal/router"
	"github.com/ymoriya/panedash/internal/session"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("ensure schema: %v", err)
	}
	cancel()

	// Redis is optional: a nil client disables the rate limiter and feed
	// cache but the service stays up.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and feed cache disabled")
	}

	users := repository.NewUserRepo(db)
	creds := repository.NewCredentialRepo(db)
	sessions := session.NewManager(repository.NewSessionRepo(db), cfg.SessionTTL)
	states := repository.NewStateRepo(db)

	deps := router.Deps{
		Auth:         handler.NewAuthHandler(cfg, users, creds, sessions),
		State:        handler.NewStateHandler(states),
		RSS:          handler.NewRSSHandler(config.LoadFeedCacheConfig(), rdb, cfg.FeedTimeout),
		Health:       handler.NewHealthHandler(db, rdb),
		Sessions:     sessions,
		RateLimit:    custommw.RateLimit(config.LoadRateLimitConfig(), rdb),
		CookieSecure: cfg.CookieSecure,
	}

	e := echo.New()
	router.RegisterRoutes(e, deps)

	if cfg.AuditEnabled {
		go func() {
			if err := queue.StartAuditConsumer(); err != nil {
				log.Printf("audit consumer stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
