package middleware

import (
    "log"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/ymoriya/panedash/internal/session"
)

// RequireSession returns an Echo middleware that resolves the session
// cookie into a user identity and stores it in the request context under
// "user_id".  The cookie contract: no cookie or an invalid session answers
// 401 (the latter with a blank cookie to clear client state); a valid but
// stale session gets its cookie reissued with the extended expiry before
// the handler runs.  Store failures answer 500 rather than masquerading
// as "logged out".
func RequireSession(mgr *session.Manager, secure bool) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            cookie, err := c.Cookie(session.CookieName)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no session"})
            }

            res, ok, err := mgr.Validate(c.Request().Context(), cookie.Value)
            if err != nil {
                log.Printf("middleware: session validate failed: %v", err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
            }
            if !ok {
                c.SetCookie(session.BlankCookie(secure))
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
            }
            if !res.Fresh {
                c.SetCookie(session.NewCookie(cookie.Value, res.ExpiresAt, secure))
            }

            c.Set("user_id", res.UserID)
            return next(c)
        }
    }
}
