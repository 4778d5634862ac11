package model

import "encoding/json"

// Pane is one resizable column of the dashboard.  Widget contents are kept
// loosely typed: the server validates the outer shape (id, size, widgets
// array) and otherwise stores whatever widget fields the client sends.
type Pane struct {
    ID      string           `json:"id"`
    Size    float64          `json:"size"`
    Widgets []map[string]any `json:"widgets"`
}

// FontSettings is the per-user global font preference blob.
type FontSettings struct {
    FontFamily string `json:"fontFamily"`
    FontSize   int    `json:"fontSize"`
}

// DefaultSettings is returned when a user has no saved settings row, and
// fills in missing fields of partially stored blobs.
var DefaultSettings = FontSettings{FontFamily: "Meiryo", FontSize: 12}

// DefaultLayout is the three-pane starter layout served to users who have
// not saved a layout yet.  Pane one carries a welcome note.
func DefaultLayout() []Pane {
    return []Pane{
        {
            ID:   "pane-1",
            Size: 33.3,
            Widgets: []map[string]any{{
                "id":         "note-default",
                "type":       "note",
                "title":      "Welcome!",
                "content":    "Start typing your notes here.",
                "fontFamily": DefaultSettings.FontFamily,
                "fontSize":   DefaultSettings.FontSize,
            }},
        },
        {ID: "pane-2", Size: 33.3, Widgets: []map[string]any{}},
        {ID: "pane-3", Size: 33.3, Widgets: []map[string]any{}},
    }
}

// DefaultLayoutJSON serializes the starter layout for the signup
// transaction, where the blob is written directly.
func DefaultLayoutJSON() string {
    b, _ := json.Marshal(DefaultLayout())
    return string(b)
}

// DefaultSettingsJSON serializes the default settings for the signup
// transaction.
func DefaultSettingsJSON() string {
    b, _ := json.Marshal(DefaultSettings)
    return string(b)
}
