package handler

import (
    "context"      // provides context with cancellation for DB calls
    "database/sql" // SQL database interactions
    "log"          // request-scoped error logging
    "net/http"     // HTTP status codes and primitives
    "regexp"       // email format check
    "strings"      // string manipulation utilities
    "time"         // timeouts for DB calls

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/ymoriya/panedash/internal/config"     // app configuration
    "github.com/ymoriya/panedash/internal/model"      // data models and defaults
    "github.com/ymoriya/panedash/internal/queue"      // audit event payloads
    "github.com/ymoriya/panedash/internal/repository" // DB repositories
    "github.com/ymoriya/panedash/internal/session"    // session manager and cookies
    queue_publisher "github.com/ymoriya/panedash/internal/service"
    "github.com/ymoriya/panedash/internal/utils" // password hashing
)

// AuthHandler bundles dependencies for identity endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Creds    *repository.CredentialRepo
	Sessions *session.Manager
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, cr *repository.CredentialRepo, s *session.Manager) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Creds: cr, Sessions: s}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	UserID string  `json:"userId"`
	Email  string  `json:"email"`
	Name   *string `json:"name"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Signup: create user, credential and default state in one transaction.
// Never auto-logs-in; the client follows up with a login call.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email format"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters long"})
	}
	var name *string
	if n := strings.TrimSpace(req.Name); n != "" {
		name = &n
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.ArgonMemory, h.Cfg.ArgonTime, h.Cfg.ArgonThreads)
	if err != nil {
		log.Printf("auth: hash password failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.CreateWithDefaults(ctx, req.Email, name, hash,
		model.DefaultLayoutJSON(), model.DefaultSettingsJSON())
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
		}
		log.Printf("auth: create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	h.audit("signup", uid, req.Email, c.RealIP())
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Login: verify credentials, create a session, set the cookie.  Unknown
// email and wrong password answer identically so the response does not
// leak which one happened.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cred, err := h.Creds.GetByIdentity(ctx, repository.IdentityKey(req.Email))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect email or password"})
		}
		log.Printf("auth: credential lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(cred.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect email or password"})
	}

	u, err := h.Users.GetByID(ctx, cred.UserID)
	if err != nil {
		log.Printf("auth: load user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	token, exp, err := h.Sessions.Create(ctx, u.ID)
	if err != nil {
		log.Printf("auth: create session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	c.SetCookie(session.NewCookie(token, exp, h.Cfg.CookieSecure))

	h.audit("login", u.ID, u.Email, c.RealIP())
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    userPart{UserID: u.ID, Email: u.Email, Name: u.Name},
	})
}

// Logout: requires an existing session cookie (403 without one),
// invalidates the session and clears the cookie.  Invalidation is
// idempotent, so a stale cookie still logs out cleanly.
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not logged in"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Resolve the owner first so the audit event can name them; a dead
	// cookie still proceeds to the idempotent invalidation below.
	var uid string
	if res, ok, err := h.Sessions.Validate(ctx, cookie.Value); err == nil && ok {
		uid = res.UserID
	}

	if err := h.Sessions.Invalidate(ctx, cookie.Value); err != nil {
		log.Printf("auth: invalidate session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	c.SetCookie(session.BlankCookie(h.Cfg.CookieSecure))

	h.audit("logout", uid, "", c.RealIP())
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// CurrentUser resolves the optional session cookie into {user: ...} or
// {user: null}.  This endpoint never errors: store failures are logged and
// degrade to the logged-out shape so the dashboard shell always renders.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"user": nil})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, ok, err := h.Sessions.Validate(ctx, cookie.Value)
	if err != nil {
		log.Printf("auth: session validate failed: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"user": nil})
	}
	if !ok {
		c.SetCookie(session.BlankCookie(h.Cfg.CookieSecure))
		return c.JSON(http.StatusOK, echo.Map{"user": nil})
	}
	if !res.Fresh {
		c.SetCookie(session.NewCookie(cookie.Value, res.ExpiresAt, h.Cfg.CookieSecure))
	}

	u, err := h.Users.GetByID(ctx, res.UserID)
	if err != nil {
		log.Printf("auth: load user failed: %v", err)
		return c.JSON(http.StatusOK, echo.Map{"user": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": userPart{UserID: u.ID, Email: u.Email, Name: u.Name},
	})
}

// audit publishes an identity lifecycle event in the background.  Publish
// failures are already logged by the publisher and never fail the request.
func (h *AuthHandler) audit(action, userID, email, ip string) {
	if !h.Cfg.AuditEnabled {
		return
	}
	ev := queue.AuditEvent{
		Action:     action,
		UserID:     userID,
		Email:      email,
		RemoteIP:   ip,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishAudit(ctx, ev)
	}()
}
