package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ymoriya/panedash/internal/model"
	"github.com/ymoriya/panedash/internal/repository"
)

// StateHandler serves the per-user layout and settings blobs.  All routes
// here sit behind the session middleware, which stores the authenticated
// user id in the context.
//
// Corrupt-data policy: a stored blob that fails to parse resolves to the
// default structure and is logged.  A 500 is reserved for the store itself
// failing.
type StateHandler struct {
	States *repository.StateRepo
}

func NewStateHandler(s *repository.StateRepo) *StateHandler { return &StateHandler{States: s} }

func authedUser(c echo.Context) string {
	uid, _ := c.Get("user_id").(string)
	return uid
}

// GetLayout returns the user's saved pane layout, or the starter layout
// when nothing is saved yet.  Defaults are a normal 200, never a 404.
func (h *StateHandler) GetLayout(c echo.Context) error {
	uid := authedUser(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	data, err := h.States.Load(ctx, repository.TableLayouts, uid)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusOK, model.DefaultLayout())
	}
	if err != nil {
		log.Printf("state: load layout failed for user %s: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load layout"})
	}

	var panes []model.Pane
	if err := json.Unmarshal([]byte(data), &panes); err != nil {
		log.Printf("state: corrupt layout blob for user %s, serving default: %v", uid, err)
		return c.JSON(http.StatusOK, model.DefaultLayout())
	}
	return c.JSON(http.StatusOK, panes)
}

// SaveLayout validates the body as an array of panes and upserts it.  The
// widget objects inside each pane are stored as sent.
func (h *StateHandler) SaveLayout(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read request body"})
	}

	var panes []model.Pane
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&panes); err != nil || panes == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout payload: expected an array of panes"})
	}
	for i := range panes {
		if panes[i].ID == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout payload: pane id required"})
		}
		if panes[i].Widgets == nil {
			panes[i].Widgets = []map[string]any{}
		}
	}

	data, err := json.Marshal(panes)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout payload"})
	}

	uid := authedUser(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.States.Save(ctx, repository.TableLayouts, uid, string(data)); err != nil {
		log.Printf("state: save layout failed for user %s: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save layout"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetSettings returns the user's font settings.  Missing rows, corrupt
// blobs and partially stored blobs all fall back to the defaults per
// field.
func (h *StateHandler) GetSettings(c echo.Context) error {
	uid := authedUser(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	data, err := h.States.Load(ctx, repository.TableSettings, uid)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusOK, model.DefaultSettings)
	}
	if err != nil {
		log.Printf("state: load settings failed for user %s: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load settings"})
	}

	var s model.FontSettings
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		log.Printf("state: corrupt settings blob for user %s, serving default: %v", uid, err)
		return c.JSON(http.StatusOK, model.DefaultSettings)
	}
	if s.FontFamily == "" {
		s.FontFamily = model.DefaultSettings.FontFamily
	}
	if s.FontSize <= 0 {
		s.FontSize = model.DefaultSettings.FontSize
	}
	return c.JSON(http.StatusOK, s)
}

// SaveSettings validates the body strictly against the font settings
// schema (unknown keys rejected) and upserts it.
func (h *StateHandler) SaveSettings(c echo.Context) error {
	var s model.FontSettings
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid settings payload"})
	}
	if s.FontFamily == "" || s.FontSize <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fontFamily and fontSize required"})
	}

	data, err := json.Marshal(s)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid settings payload"})
	}

	uid := authedUser(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.States.Save(ctx, repository.TableSettings, uid, string(data)); err != nil {
		log.Printf("state: save settings failed for user %s: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save settings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
