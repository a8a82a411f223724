package threads

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

type memoryRow struct {
	seq    int64
	thread models.Thread
}

type MemoryRepository struct {
	mu   sync.RWMutex
	seq  int64
	rows map[string]*memoryRow
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]*memoryRow)}
}

func (r *MemoryRepository) Create(_ context.Context, thread *models.Thread) (*models.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.rows[thread.ID] = &memoryRow{seq: r.seq, thread: *thread}
	t := *thread
	return &t, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	t := row.thread
	return &t, nil
}

func (r *MemoryRepository) list(match func(*models.Thread) bool) []*models.Thread {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make([]*memoryRow, 0)
	for _, row := range r.rows {
		if match(&row.thread) {
			selected = append(selected, row)
		}
	}
	slices.SortFunc(selected, func(a, b *memoryRow) int {
		if c := b.thread.CreatedAt.Compare(a.thread.CreatedAt); c != 0 {
			return c
		}
		return int(b.seq - a.seq)
	})

	result := make([]*models.Thread, 0, len(selected))
	for _, row := range selected {
		t := row.thread
		result = append(result, &t)
	}
	return result
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*models.Thread, error) {
	return r.list(func(t *models.Thread) bool { return t.UserID == userID }), nil
}

func (r *MemoryRepository) ListByUserAndStatus(_ context.Context, userID string, status models.ThreadStatus) ([]*models.Thread, error) {
	return r.list(func(t *models.Thread) bool { return t.UserID == userID && t.Status == status }), nil
}

func (r *MemoryRepository) update(id string, at time.Time, fn func(*models.Thread)) (*models.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	fn(&row.thread)
	row.thread.UpdatedAt = at
	t := row.thread
	return &t, nil
}

func (r *MemoryRepository) UpdateTitle(_ context.Context, id string, title string, at time.Time) (*models.Thread, error) {
	return r.update(id, at, func(t *models.Thread) { t.Title = title })
}

func (r *MemoryRepository) SetStatus(_ context.Context, id string, status models.ThreadStatus, at time.Time) (*models.Thread, error) {
	return r.update(id, at, func(t *models.Thread) { t.Status = status })
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
