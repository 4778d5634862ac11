package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymoriya/panedash/internal/model"
	"github.com/ymoriya/panedash/internal/repository"
)

var (
	layoutSelQ   = regexp.QuoteMeta("SELECT data FROM layouts WHERE user_id=? LIMIT 1")
	layoutSaveQ  = regexp.QuoteMeta("INSERT INTO layouts (user_id, data) VALUES (?,?) ON DUPLICATE KEY UPDATE data=VALUES(data)")
	settingsSelQ = regexp.QuoteMeta("SELECT data FROM settings WHERE user_id=? LIMIT 1")
	settingsSave = regexp.QuoteMeta("INSERT INTO settings (user_id, data) VALUES (?,?) ON DUPLICATE KEY UPDATE data=VALUES(data)")
)

func newStateHandler(t *testing.T) (*StateHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewStateHandler(repository.NewStateRepo(db)), mock, db
}

// doAuthed invokes a handler with "user_id" already resolved, the way the
// session middleware leaves the context for these routes.
func doAuthed(t *testing.T, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u-1")
	require.NoError(t, h(c))
	return rec
}

func TestGetLayout_NoRowReturnsDefault(t *testing.T) {
	h, mock, db := newStateHandler(t)
	defer db.Close()

	mock.ExpectQuery(layoutSelQ).WithArgs("u-1").WillReturnError(sql.ErrNoRows)

	rec := doAuthed(t, h.GetLayout, http.MethodGet, "/api/layout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var panes []model.Pane
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &panes))
	require.Len(t, panes, 3)
	assert.Equal(t, "pane-1", panes[0].ID)
	assert.Len(t, panes[0].Widgets, 1, "default pane one carries the welcome note")
}

func TestLayout_SaveThenLoadRoundTrip(t *testing.T) {
	h, mock, db := newStateHandler(t)
	defer db.Close()

	payload := `[{"id":"p1","size":100,"widgets":[]}]`

	mock.ExpectExec(layoutSaveQ).
		WithArgs("u-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doAuthed(t, h.SaveLayout, http.MethodPost, "/api/layout", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	// Serve back what the save path stored.
	mock.ExpectQuery(layoutSelQ).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(payload))

	rec = doAuthed(t, h.GetLayout, http.MethodGet, "/api/layout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, payload, rec.Body.String())
}

func TestSaveLayout_RejectsBadShapes(t *testing.T) {
	h, _, db := newStateHandler(t)
	defer db.Close()

	for _, body := range []string{
		`{"id":"p1"}`,                       // object, not array
		`"just a string"`,                   // scalar
		`[{"size":50,"widgets":[]}]`,        // pane without id
		`[{"id":"p1","size":"wide"}]`,       // size not a number
		`[{"id":"p1","size":50,"widgets":5}]`, // widgets not an array
		`null`,
	} {
		rec := doAuthed(t, h.SaveLayout, http.MethodPost, "/api/layout", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestGetLayout_CorruptBlobResolvesToDefault(t *testing.T) {
	h, mock, db := newStateHandler(t)
	defer db.Close()

	mock.ExpectQuery(layoutSelQ).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`[{"id": truncated...`))

	rec := doAuthed(t, h.GetLayout, http.MethodGet, "/api/layout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var panes []model.Pane
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &panes))
	assert.Len(t, panes, 3, "corrupt blob must resolve to the default layout")
}

func TestGetLayout_StoreFailure(t *testing.T) {
	h, mock, db := newStateHandler(t)
	defer db.Close()

	mock.ExpectQuery(layoutSelQ).WithArgs("u-1").
		WillReturnError(sql.ErrConnDone)

	rec := doAuthed(t, h.GetLayout, http.MethodGet, "/api/layout", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSettings_RoundTripAndDefault(t *testing.T) {
	h, mock, db := newStateHandler(t)
	defer db.Close()

	// No saved row: the documented default comes back.
	mock.ExpectQuery(settingsSelQ).WithArgs("u-1").WillReturnError(sql.ErrNoRows)
	rec := doAuthed(t, h.GetSettings, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"fontFamily":"Meiryo","fontSize":12}`, rec.Body.String())

	// Save then read back.
	mock.ExpectExec(settingsSave).
		WithArgs("u-1", `{"fontFamily":"Arial","fontSize":14}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rec = doAuthed(t, h.SaveSettings, http.MethodPost, "/api/settings", `{"fontFamily":"Arial","fontSize":14}`)
	require.Equal(t, http.StatusOK, rec.Code)

	mock.ExpectQuery(settingsSelQ).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{"fontFamily":"Arial","fontSize":14}`))
	rec = doAuthed(t, h.GetSettings, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"fontFamily":"Arial","fontSize":14}`, rec.Body.String())
}

func TestGetSettings_PartialBlobFallsBackPerField(t *testing.T) {
	h, mock, db := newStateHandler(t)
	defer db.Close()

	mock.ExpectQuery(settingsSelQ).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{"fontFamily":"Georgia"}`))

	rec := doAuthed(t, h.GetSettings, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"fontFamily":"Georgia","fontSize":12}`, rec.Body.String())
}

func TestGetSettings_CorruptBlobResolvesToDefault(t *testing.T) {
	h, mock, db := newStateHandler(t)
	defer db.Close()

	mock.ExpectQuery(settingsSelQ).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{{{`))

	rec := doAuthed(t, h.GetSettings, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"fontFamily":"Meiryo","fontSize":12}`, rec.Body.String())
}

func TestSaveSettings_RejectsBadShapes(t *testing.T) {
	h, _, db := newStateHandler(t)
	defer db.Close()

	for _, body := range []string{
		`{"fontFamily":"Arial"}`,                           // missing fontSize
		`{"fontFamily":"Arial","fontSize":"14"}`,           // string size
		`{"fontFamily":"","fontSize":14}`,                  // empty family
		`{"fontFamily":"Arial","fontSize":14,"theme":"x"}`, // unknown key
		`[1,2,3]`,
	} {
		rec := doAuthed(t, h.SaveSettings, http.MethodPost, "/api/settings", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}
