// Package prefs persists user preferences and theme settings through the
// storage adapter.
package prefs

import (
	"context"

	"github.com/GiftNdimande/taskdeck/internal/storage"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// Adapter keys for the two preference documents.
const (
	PreferencesKey = "taskdeck:preferences"
	ThemeKey       = "taskdeck:theme"
)

// Preferences holds list and entry defaults for the user surfaces.
type Preferences struct {
	DefaultPriority tasks.Priority `json:"defaultPriority"`
	SortBy          string         `json:"sortBy"`
	ShowCompleted   bool           `json:"showCompleted"`
	ConfirmDelete   bool           `json:"confirmDelete"`
}

// Theme holds display settings for UI clients.
type Theme struct {
	Mode   string `json:"mode"`
	Accent string `json:"accent"`
}

// DefaultPreferences returns the preferences used before the user changes
// anything.
func DefaultPreferences() Preferences {
	return Preferences{
		DefaultPriority: tasks.PriorityMedium,
		SortBy:          "createdAt",
		ShowCompleted:   true,
		ConfirmDelete:   true,
	}
}

// DefaultTheme returns the theme used before the user changes anything.
func DefaultTheme() Theme {
	return Theme{Mode: "system", Accent: "blue"}
}

// PreferencesPatch is a partial preferences update. Nil fields are left
// unchanged in the stored document.
type PreferencesPatch struct {
	DefaultPriority *tasks.Priority `json:"defaultPriority,omitempty"`
	SortBy          *string         `json:"sortBy,omitempty"`
	ShowCompleted   *bool           `json:"showCompleted,omitempty"`
	ConfirmDelete   *bool           `json:"confirmDelete,omitempty"`
}

// ThemePatch is a partial theme update. Nil fields are left unchanged.
type ThemePatch struct {
	Mode   *string `json:"mode,omitempty"`
	Accent *string `json:"accent,omitempty"`
}

// Store reads and updates the preference documents.
type Store struct {
	adapter *storage.Adapter
}

// NewStore creates a Store over adapter.
func NewStore(adapter *storage.Adapter) *Store {
	return &Store{adapter: adapter}
}

// Preferences returns the stored preferences. Missing keys and missing
// fields read as the defaults, never as an error.
func (s *Store) Preferences(ctx context.Context) (Preferences, error) {
	p := DefaultPreferences()
	if _, err := s.adapter.Get(ctx, PreferencesKey, &p); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// Theme returns the stored theme, with defaults for anything unset.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	t := DefaultTheme()
	if _, err := s.adapter.Get(ctx, ThemeKey, &t); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// UpdatePreferences shallow-merges the set fields of patch over the stored
// document and returns the result.
func (s *Store) UpdatePreferences(ctx context.Context, patch PreferencesPatch) (Preferences, error) {
	if err := s.adapter.Merge(ctx, PreferencesKey, patch); err != nil {
		return Preferences{}, err
	}
	return s.Preferences(ctx)
}

// UpdateTheme shallow-merges the set fields of patch over the stored theme
// and returns the result.
func (s *Store) UpdateTheme(ctx context.Context, patch ThemePatch) (Theme, error) {
	if err := s.adapter.Merge(ctx, ThemeKey, patch); err != nil {
		return Theme{}, err
	}
	return s.Theme(ctx)
}
