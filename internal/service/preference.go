package service

import (
	"context"
	"fmt"

	"github.com/tripwhizz/tripsync/internal/domain"
)

// PreferencesBackend is the preferences API. *apiclient.PreferencesAPI
// satisfies it.
type PreferencesBackend interface {
	Get(ctx context.Context) (domain.UserPreferences, error)
	Update(ctx context.Context, p domain.UserPreferences) (domain.UserPreferences, error)
}

// PreferenceService reads and writes the per-user preferences record.
type PreferenceService struct {
	api PreferencesBackend
}

// NewPreferenceService constructs a PreferenceService backed by api.
func NewPreferenceService(api PreferencesBackend) *PreferenceService {
	return &PreferenceService{api: api}
}

// GetPreferences returns the current record.
func (s *PreferenceService) GetPreferences(ctx context.Context) (domain.UserPreferences, error) {
	p, err := s.api.Get(ctx)
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("service.PreferenceService.GetPreferences: %w", err)
	}
	return p, nil
}

// UpdatePreferences stores p and returns the saved record.
func (s *PreferenceService) UpdatePreferences(ctx context.Context, p domain.UserPreferences) (domain.UserPreferences, error) {
	out, err := s.api.Update(ctx, p)
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("service.PreferenceService.UpdatePreferences: %w", err)
	}
	return out, nil
}

// SetTripSort changes only the trip sort, keeping every other key.
// raw is "name", "date", or "" / "none" to clear it.
func (s *PreferenceService) SetTripSort(ctx context.Context, raw string) (domain.UserPreferences, error) {
	sort, err := domain.ParseTripSort(raw)
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("service.PreferenceService.SetTripSort: %w", err)
	}
	p, err := s.GetPreferences(ctx)
	if err != nil {
		return domain.UserPreferences{}, err
	}
	p.SetTripSort(sort)
	return s.UpdatePreferences(ctx, p)
}
