package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ymoriya/panedash/internal/config"
)

// bucketScript refills and drains one token bucket atomically.  State
// lives in a Redis hash per key: remaining tokens and the timestamp of
// the last refill.  Returns {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
local tokens, last = unpack(redis.call('HMGET', KEYS[1], 't', 'ts'))
local now = tonumber(ARGV[1])
local cap = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])

tokens = tonumber(tokens)
last = tonumber(last)
if tokens == nil or last == nil then
    tokens = cap
    last = now
end

local steps = math.floor((now - last) / interval)
if steps > 0 then
    tokens = math.min(cap, tokens + steps * refill)
    last = last + steps * interval
end

local allowed = 0
local retry = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry = (last + interval) - now
end

redis.call('HMSET', KEYS[1], 't', tokens, 'ts', last)
redis.call('EXPIRE', KEYS[1], ARGV[5])
return {allowed, tokens, retry}
`)

// RateLimit guards the credential endpoints with a Redis token bucket.
// Without a Redis client (or with limiting disabled) it passes requests
// through untouched, and a Redis error at request time fails open: the
// limiter protects against brute force, it must never become the outage.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled || rdb == nil {
				return next(c)
			}

			res, err := bucketScript.Run(c.Request().Context(), rdb,
				[]string{bucketKey(cfg, c)},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(res) != 3 {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: script failed, passing through: %v", err)
				}
				return next(c)
			}
			allowed, remaining, retryMs := res[0] == 1, res[1], res[2]

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if allowed {
				return next(c)
			}

			retrySec := (retryMs + 999) / 1000
			h.Set("Retry-After", strconv.FormatInt(retrySec, 10))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too many requests",
				"retry_after": retrySec,
			})
		}
	}
}

// bucketKey scopes the bucket per the configured strategy.  The guarded
// endpoints run before authentication, so keys are built from the client
// address and route only.
func bucketKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		return strings.Join([]string{cfg.Prefix, "ip", ip}, ":")
	case "route":
		return strings.Join([]string{cfg.Prefix, "route", route}, ":")
	default: // ip_route
		return strings.Join([]string{cfg.Prefix, "ip", ip, "route", route}, ":")
	}
}
