package preferences

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

// MemoryRepository keys records by user id.
type MemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string]models.UserPreferences
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[string]models.UserPreferences)}
}

func (r *MemoryRepository) Create(_ context.Context, prefs *models.UserPreferences) (*models.UserPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUser[prefs.UserID]; exists {
		return nil, common.ErrAlreadyExists
	}
	r.byUser[prefs.UserID] = *prefs
	p := *prefs
	return &p, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.UserPreferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.byUser {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) GetByUserID(_ context.Context, userID string) (*models.UserPreferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byUser[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) GetOrCreate(_ context.Context, defaults *models.UserPreferences) (*models.UserPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byUser[defaults.UserID]
	if !ok {
		p = *defaults
		r.byUser[defaults.UserID] = p
	}
	return &p, nil
}

func (r *MemoryRepository) Update(_ context.Context, userID string, patch models.PreferencesPatch, at time.Time) (*models.UserPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byUser[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	patch.Apply(&p)
	p.UpdatedAt = at
	r.byUser[userID] = p
	return &p, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, p := range r.byUser {
		if p.ID == id {
			delete(r.byUser, userID)
			return nil
		}
	}
	return common.ErrNotFound
}
