package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing

	"github.com/ymoriya/panedash/internal/handler"    // handlers implementing the endpoints
	"github.com/ymoriya/panedash/internal/middleware" // session and rate limit middleware
	"github.com/ymoriya/panedash/internal/session"
)

// Deps bundles everything the route table needs.  RateLimit guards the
// credential endpoints; CookieSecure flows into every Set-Cookie the
// session middleware emits.
type Deps struct {
	Auth         *handler.AuthHandler
	State        *handler.StateHandler
	RSS          *handler.RSSHandler
	Health       *handler.HealthHandler
	Sessions     *session.Manager
	RateLimit    echo.MiddlewareFunc
	CookieSecure bool
}

// RegisterRoutes wires the full API surface onto the provided Echo
// instance.  Identity endpoints and the RSS proxy are public; layout and
// settings sit behind the session middleware.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", d.Health.Check)

	api := e.Group("/api")

	// Credential endpoints carry the rate limiter so password guessing and
	// bulk signups are throttled per client IP.
	api.POST("/signup", d.Auth.Signup, d.RateLimit)
	api.POST("/login", d.Auth.Login, d.RateLimit)

	// Logout manages its own cookie handling (403 without a session).
	api.POST("/logout", d.Auth.Logout)

	// Optional-session endpoint: resolves to {user: null} when logged out.
	api.GET("/user", d.Auth.CurrentUser)

	// Per-user state requires a valid session.
	authed := api.Group("", middleware.RequireSession(d.Sessions, d.CookieSecure))
	authed.GET("/layout", d.State.GetLayout)
	authed.POST("/layout", d.State.SaveLayout)
	authed.GET("/settings", d.State.GetSettings)
	authed.POST("/settings", d.State.SaveSettings)

	// Feed proxy is unauthenticated; the browser widget calls it directly.
	api.GET("/rss", d.RSS.GetFeed)
}
