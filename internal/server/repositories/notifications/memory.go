package notifications

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

type memoryRow struct {
	seq int64
	n   models.EmailNotification
}

type MemoryRepository struct {
	mu   sync.RWMutex
	seq  int64
	rows map[string]*memoryRow
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]*memoryRow)}
}

func clone(n models.EmailNotification) *models.EmailNotification {
	if n.SentAt != nil {
		s := *n.SentAt
		n.SentAt = &s
	}
	return &n
}

func (r *MemoryRepository) Create(_ context.Context, n *models.EmailNotification) (*models.EmailNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.Status = models.NotificationPending
	r.seq++
	r.rows[n.ID] = &memoryRow{seq: r.seq, n: *clone(*n)}
	return clone(*n), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.EmailNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return clone(row.n), nil
}

func (r *MemoryRepository) list(newestFirst bool, match func(*models.EmailNotification) bool) []*models.EmailNotification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make([]*memoryRow, 0)
	for _, row := range r.rows {
		if match(&row.n) {
			selected = append(selected, row)
		}
	}
	slices.SortFunc(selected, func(a, b *memoryRow) int {
		c := a.n.CreatedAt.Compare(b.n.CreatedAt)
		if c == 0 {
			c = int(a.seq - b.seq)
		}
		if newestFirst {
			return -c
		}
		return c
	})

	result := make([]*models.EmailNotification, 0, len(selected))
	for _, row := range selected {
		result = append(result, clone(row.n))
	}
	return result
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*models.EmailNotification, error) {
	return r.list(true, func(n *models.EmailNotification) bool { return n.UserID == userID }), nil
}

func (r *MemoryRepository) ListByUserAndStatus(_ context.Context, userID string, status models.NotificationStatus) ([]*models.EmailNotification, error) {
	return r.list(true, func(n *models.EmailNotification) bool {
		return n.UserID == userID && n.Status == status
	}), nil
}

func (r *MemoryRepository) ListPending(_ context.Context) ([]*models.EmailNotification, error) {
	return r.list(false, func(n *models.EmailNotification) bool { return n.Status == models.NotificationPending }), nil
}

func (r *MemoryRepository) ListFailed(_ context.Context) ([]*models.EmailNotification, error) {
	return r.list(true, func(n *models.EmailNotification) bool { return n.Status == models.NotificationFailed }), nil
}

func (r *MemoryRepository) transition(id string, fn func(*models.EmailNotification)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.n.Status != models.NotificationPending {
		return common.ErrNotFound
	}
	fn(&row.n)
	return nil
}

func (r *MemoryRepository) MarkSent(_ context.Context, id string, at time.Time) error {
	return r.transition(id, func(n *models.EmailNotification) {
		n.Status = models.NotificationSent
		n.SentAt = &at
	})
}

func (r *MemoryRepository) MarkFailed(_ context.Context, id string, reason string) error {
	return r.transition(id, func(n *models.EmailNotification) {
		n.Status = models.NotificationFailed
		n.Error = reason
	})
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
