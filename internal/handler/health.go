package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness plus the state of the backing stores.
// The database is required, so an unreachable database answers 503.
// Redis only powers feed caching and rate limiting; its state is
// reported but never fails the check.
type HealthHandler struct {
	DB  *sql.DB
	RDB *redis.Client
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, RDB: rdb}
}

func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":   "degraded",
			"database": "down",
		})
	}

	redisState := "disabled"
	if h.RDB != nil {
		redisState = "up"
		if err := h.RDB.Ping(ctx).Err(); err != nil {
			redisState = "down"
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "ok",
		"database": "up",
		"redis":    redisState,
	})
}
