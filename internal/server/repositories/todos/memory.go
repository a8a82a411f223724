package todos

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

type memoryRow struct {
	seq  int64
	todo models.Todo
}

// MemoryRepository is a Repository kept in process memory. Returned todos
// are copies.
type MemoryRepository struct {
	mu   sync.RWMutex
	seq  int64
	rows map[string]*memoryRow
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]*memoryRow)}
}

func clone(t models.Todo) *models.Todo {
	if t.Tags != nil {
		t.Tags = slices.Clone(t.Tags)
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		t.CompletedAt = &c
	}
	return &t
}

func (r *MemoryRepository) Create(_ context.Context, todo *models.Todo) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.rows[todo.ID] = &memoryRow{seq: r.seq, todo: *clone(*todo)}
	return clone(*todo), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return clone(row.todo), nil
}

func (r *MemoryRepository) list(match func(*models.Todo) bool) []*models.Todo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make([]*memoryRow, 0)
	for _, row := range r.rows {
		if match(&row.todo) {
			selected = append(selected, row)
		}
	}
	slices.SortFunc(selected, func(a, b *memoryRow) int {
		if c := b.todo.CreatedAt.Compare(a.todo.CreatedAt); c != 0 {
			return c
		}
		return int(b.seq - a.seq)
	})

	result := make([]*models.Todo, 0, len(selected))
	for _, row := range selected {
		result = append(result, clone(row.todo))
	}
	return result
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*models.Todo, error) {
	return r.list(func(t *models.Todo) bool { return t.UserID == userID }), nil
}

func (r *MemoryRepository) ListByUserAndCompleted(_ context.Context, userID string, completed bool) ([]*models.Todo, error) {
	return r.list(func(t *models.Todo) bool { return t.UserID == userID && t.Completed == completed }), nil
}

func (r *MemoryRepository) update(id string, at time.Time, fn func(*models.Todo)) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	fn(&row.todo)
	row.todo.UpdatedAt = at
	return clone(row.todo), nil
}

func (r *MemoryRepository) UpdateText(_ context.Context, id string, text string, at time.Time) (*models.Todo, error) {
	return r.update(id, at, func(t *models.Todo) { t.Text = text })
}

func (r *MemoryRepository) UpdatePriority(_ context.Context, id string, priority models.Priority, at time.Time) (*models.Todo, error) {
	return r.update(id, at, func(t *models.Todo) { t.Priority = priority })
}

func (r *MemoryRepository) UpdateDueDate(_ context.Context, id string, due *time.Time, at time.Time) (*models.Todo, error) {
	return r.update(id, at, func(t *models.Todo) {
		t.DueDate = nil
		if due != nil {
			d := *due
			t.DueDate = &d
		}
	})
}

func (r *MemoryRepository) UpdateTags(_ context.Context, id string, tags []string, at time.Time) (*models.Todo, error) {
	return r.update(id, at, func(t *models.Todo) { t.Tags = slices.Clone(tags) })
}

func setCompleted(t *models.Todo, completed bool, at time.Time) {
	t.Completed = completed
	t.CompletedAt = nil
	if completed {
		c := at
		t.CompletedAt = &c
	}
}

func (r *MemoryRepository) ToggleCompleted(_ context.Context, id string, at time.Time) (*models.Todo, error) {
	return r.update(id, at, func(t *models.Todo) { setCompleted(t, !t.Completed, at) })
}

func (r *MemoryRepository) SetCompleted(_ context.Context, id string, completed bool, at time.Time) (*models.Todo, error) {
	return r.update(id, at, func(t *models.Todo) { setCompleted(t, completed, at) })
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

func (r *MemoryRepository) DeleteCompletedByUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, row := range r.rows {
		if row.todo.UserID == userID && row.todo.Completed {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}
