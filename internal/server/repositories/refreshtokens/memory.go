package refreshtokens

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

type MemoryRepository struct {
	mu      sync.Mutex
	seq     int64
	now     func() time.Time
	byToken map[string]models.RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now, byToken: make(map[string]models.RefreshToken)}
}

func (r *MemoryRepository) Create(_ context.Context, userID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	now := r.now()
	r.byToken[token] = models.RefreshToken{
		ID:        strconv.FormatInt(r.seq, 10),
		UserID:    userID,
		Token:     token,
		Expires:   now.Add(validity),
		CreatedAt: now,
	}
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &rt, nil
}

func (r *MemoryRepository) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	delete(r.byToken, token)
	return &rt, nil
}

func (r *MemoryRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byToken, token)
	return nil
}

func (r *MemoryRepository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, rt := range r.byToken {
		if rt.UserID == userID {
			delete(r.byToken, token)
		}
	}
	return nil
}
