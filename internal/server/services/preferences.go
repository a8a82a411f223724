package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/dmitrijs2005/focustodo/internal/server/ratelimit"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/preferences"
)

// PreferencesService manages the caller's settings record, creating the
// defaults on first access.
type PreferencesService struct {
	base
}

func NewPreferencesService(d Deps) *PreferencesService {
	return &PreferencesService{base: newBase(d)}
}

func (s *PreferencesService) repo() preferences.Repository {
	return s.repomanager.Preferences(s.conn())
}

func (s *PreferencesService) ensure(ctx context.Context, repo preferences.Repository, userID string) (*models.UserPreferences, error) {
	prefs, err := repo.GetOrCreate(ctx, models.DefaultPreferences(newID(), userID, s.now()))
	if err != nil {
		return nil, fmt.Errorf("error loading preferences: %w", err)
	}
	return prefs, nil
}

// Get returns the caller's preferences.
func (s *PreferencesService) Get(ctx context.Context) (*models.UserPreferences, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.ensure(ctx, s.repo(), userID)
}

// Initialize makes sure the caller has a preferences record and returns
// its id.
func (s *PreferencesService) Initialize(ctx context.Context) (string, error) {
	prefs, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	return prefs.ID, nil
}

func (s *PreferencesService) Update(ctx context.Context, patch models.PreferencesPatch) (*models.UserPreferences, error) {
	userID, err := s.begin(ctx, ratelimit.UpdatePreferences)
	if err != nil {
		return nil, err
	}
	if err := checkPreferencesPatch(patch); err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, func(*models.UserPreferences) models.PreferencesPatch { return patch })
}

func (s *PreferencesService) ToggleEmailNotifications(ctx context.Context) (*models.UserPreferences, error) {
	userID, err := s.begin(ctx, ratelimit.UpdatePreferences)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, func(cur *models.UserPreferences) models.PreferencesPatch {
		v := !cur.EmailNotificationsEnabled
		return models.PreferencesPatch{EmailNotificationsEnabled: &v}
	})
}

func (s *PreferencesService) ToggleAIAssistant(ctx context.Context) (*models.UserPreferences, error) {
	userID, err := s.begin(ctx, ratelimit.UpdatePreferences)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, userID, func(cur *models.UserPreferences) models.PreferencesPatch {
		v := !cur.AIAssistantEnabled
		return models.PreferencesPatch{AIAssistantEnabled: &v}
	})
}

// apply writes the patch derived from the current record.
func (s *PreferencesService) apply(ctx context.Context, userID string,
	patch func(cur *models.UserPreferences) models.PreferencesPatch) (*models.UserPreferences, error) {
	repo := s.repo()
	cur, err := s.ensure(ctx, repo, userID)
	if err != nil {
		return nil, err
	}
	prefs, err := repo.Update(ctx, userID, patch(cur), s.now())
	if err != nil {
		return nil, fmt.Errorf("error updating preferences: %w", err)
	}
	return prefs, nil
}
