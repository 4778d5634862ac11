package session

import (
	"net/http"
	"time"
)

// CookieName is the session cookie's name on the wire.
const CookieName = "session"

// NewCookie builds the session cookie for a raw token.  HttpOnly and
// SameSite=Lax always; Secure is deployment-controlled.
func NewCookie(token string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// BlankCookie builds an immediately-expiring cookie that clears the
// client's session state.
func BlankCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
