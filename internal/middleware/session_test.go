package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymoriya/panedash/internal/repository"
	"github.com/ymoriya/panedash/internal/session"
	"github.com/ymoriya/panedash/internal/utils"
)

const ttl = 720 * time.Hour

var lookupQ = regexp.QuoteMeta("SELECT token_hash, user_id, expires_at, created_at FROM sessions WHERE token_hash=? LIMIT 1")

func runProtected(t *testing.T, db *sql.DB, cookie *http.Cookie) (*httptest.ResponseRecorder, string) {
	t.Helper()
	mgr := session.NewManager(repository.NewSessionRepo(db), ttl)

	var gotUser string
	handler := RequireSession(mgr, false)(func(c echo.Context) error {
		gotUser, _ = c.Get("user_id").(string)
		return c.NoContent(http.StatusOK)
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/layout", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec, gotUser
}

func TestRequireSession_NoCookie(t *testing.T) {
	db, _, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rec, _ := runProtected(t, db, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_InvalidSessionClearsCookie(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(lookupQ).
		WithArgs(utils.HashToken("dead")).
		WillReturnError(sql.ErrNoRows)

	rec, _ := runProtected(t, db, &http.Cookie{Name: session.CookieName, Value: "dead"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value, "invalid session must be answered with a blank cookie")
}

func TestRequireSession_ValidFreshSession(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	hash := utils.HashToken("live")
	mock.ExpectQuery(lookupQ).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"token_hash", "user_id", "expires_at", "created_at"}).
			AddRow(hash, "u-7", time.Now().UTC().Add(ttl), time.Now()))

	rec, gotUser := runProtected(t, db, &http.Cookie{Name: session.CookieName, Value: "live"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-7", gotUser)
	assert.Empty(t, rec.Result().Cookies(), "fresh session must not touch the cookie")
}

func TestRequireSession_StaleSessionReissues(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	hash := utils.HashToken("stale")
	mock.ExpectQuery(lookupQ).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"token_hash", "user_id", "expires_at", "created_at"}).
			AddRow(hash, "u-7", time.Now().UTC().Add(time.Hour), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET expires_at=? WHERE token_hash=?")).
		WithArgs(sqlmock.AnyArg(), hash).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, gotUser := runProtected(t, db, &http.Cookie{Name: session.CookieName, Value: "stale"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-7", gotUser)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1, "stale session must reissue the cookie")
	assert.Equal(t, "stale", cookies[0].Value)
}

func TestRequireSession_StoreFailureIs500(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(lookupQ).
		WithArgs(utils.HashToken("any")).
		WillReturnError(sql.ErrConnDone)

	rec, _ := runProtected(t, db, &http.Cookie{Name: session.CookieName, Value: "any"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code,
		"a store outage must not be presented as logged out")
}
