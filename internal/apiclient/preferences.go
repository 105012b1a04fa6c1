package apiclient

import (
	"context"
	"net/http"

	"github.com/tripwhizz/tripsync/internal/domain"
)

const preferencesPath = "/auth/user/preferences/"

// PreferencesAPI wraps the per-user preferences record.
type PreferencesAPI struct{ c *Client }

// Preferences returns the preferences resource wrapper.
func (c *Client) Preferences() *PreferencesAPI { return &PreferencesAPI{c: c} }

// Get returns the user's preferences.
func (a *PreferencesAPI) Get(ctx context.Context) (domain.UserPreferences, error) {
	var p domain.UserPreferences
	err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: preferencesPath}, &p)
	return p, err
}

// Update stores the user's preferences and returns the saved record.
func (a *PreferencesAPI) Update(ctx context.Context, p domain.UserPreferences) (domain.UserPreferences, error) {
	var out domain.UserPreferences
	body := map[string]any{"data": p.Data}
	err := a.c.Do(ctx, Request{Method: http.MethodPut, Path: preferencesPath, Body: body}, &out)
	return out, err
}
