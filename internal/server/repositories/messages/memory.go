package messages

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

type memoryRow struct {
	seq int64
	msg models.Message
}

type MemoryRepository struct {
	mu   sync.RWMutex
	seq  int64
	rows map[string]*memoryRow
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]*memoryRow)}
}

func (r *MemoryRepository) Create(_ context.Context, msg *models.Message) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.rows[msg.ID] = &memoryRow{seq: r.seq, msg: *msg}
	m := *msg
	return &m, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	m := row.msg
	return &m, nil
}

// chronological returns matching messages oldest first.
func (r *MemoryRepository) chronological(match func(*models.Message) bool) []*models.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make([]*memoryRow, 0)
	for _, row := range r.rows {
		if match(&row.msg) {
			selected = append(selected, row)
		}
	}
	slices.SortFunc(selected, func(a, b *memoryRow) int {
		if c := a.msg.CreatedAt.Compare(b.msg.CreatedAt); c != 0 {
			return c
		}
		return int(a.seq - b.seq)
	})

	result := make([]*models.Message, 0, len(selected))
	for _, row := range selected {
		m := row.msg
		result = append(result, &m)
	}
	return result
}

func (r *MemoryRepository) ListByThread(_ context.Context, threadID string) ([]*models.Message, error) {
	return r.chronological(func(m *models.Message) bool { return m.ThreadID == threadID }), nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*models.Message, error) {
	list := r.chronological(func(m *models.Message) bool { return m.UserID == userID })
	slices.Reverse(list)
	return list, nil
}

func (r *MemoryRepository) ListRecentByThread(_ context.Context, threadID string, n int) ([]*models.Message, error) {
	list := r.chronological(func(m *models.Message) bool { return m.ThreadID == threadID })
	if n >= 0 && len(list) > n {
		list = list[len(list)-n:]
	}
	return list, nil
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

func (r *MemoryRepository) DeleteByThread(_ context.Context, threadID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, row := range r.rows {
		if row.msg.ThreadID == threadID {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}
