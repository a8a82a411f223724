package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/dbx"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/dmitrijs2005/focustodo/internal/server/ratelimit"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/todos"
)

const entityTodo = "Todo"

// NewTodo carries the fields of a todo to create. Zero values mean absent.
type NewTodo struct {
	Text     string
	Priority models.Priority
	DueDate  *time.Time
	Tags     []string
}

// TodoService manages the caller's todos.
type TodoService struct {
	base
}

func NewTodoService(d Deps) *TodoService {
	return &TodoService{base: newBase(d)}
}

func (s *TodoService) repo() todos.Repository {
	return s.repomanager.Todos(s.conn())
}

// List returns all todos of the caller, newest first.
func (s *TodoService) List(ctx context.Context) ([]*models.Todo, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo().ListByUser(ctx, userID)
}

// ListActive returns the caller's incomplete todos.
func (s *TodoService) ListActive(ctx context.Context) ([]*models.Todo, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo().ListByUserAndCompleted(ctx, userID, false)
}

// ListCompleted returns the caller's completed todos.
func (s *TodoService) ListCompleted(ctx context.Context) ([]*models.Todo, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo().ListByUserAndCompleted(ctx, userID, true)
}

// Stats counts the caller's todos.
func (s *TodoService) Stats(ctx context.Context) (*models.TodoStats, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	return s.todoStats(ctx, userID)
}

// todoStats runs the three owner-scoped counts inside one read-only
// snapshot so that Total always equals Active plus Completed.
func (b *base) todoStats(ctx context.Context, userID string) (*models.TodoStats, error) {
	stats := &models.TodoStats{}
	err := b.snapshot(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := b.repomanager.Todos(tx)

		var err error
		if stats.Total, err = todos.CountByUser(ctx, repo, userID); err != nil {
			return fmt.Errorf("count todos: %w", err)
		}
		if stats.Active, err = todos.CountActiveByUser(ctx, repo, userID); err != nil {
			return fmt.Errorf("count active todos: %w", err)
		}
		if stats.Completed, err = todos.CountCompletedByUser(ctx, repo, userID); err != nil {
			return fmt.Errorf("count completed todos: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *TodoService) Create(ctx context.Context, in NewTodo) (*models.Todo, error) {
	userID, err := s.begin(ctx, ratelimit.CreateTodo)
	if err != nil {
		return nil, err
	}

	now := s.now()

	text, err := checkTodoText(in.Text)
	if err != nil {
		return nil, err
	}
	if err := checkPriority(in.Priority); err != nil {
		return nil, err
	}
	if err := checkDueDate(in.DueDate, now); err != nil {
		return nil, err
	}
	tags, err := checkTags(in.Tags)
	if err != nil {
		return nil, err
	}

	todo, err := s.repo().Create(ctx, &models.Todo{
		ID:        newID(),
		UserID:    userID,
		Text:      text,
		Priority:  in.Priority,
		DueDate:   in.DueDate,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating todo: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TodoCreated(string(todo.Priority))
	}
	s.logger.Debug(ctx, "todo created", "user_id", userID, "todo_id", todo.ID)

	return todo, nil
}

// owned loads todo id and checks the caller owns it.
func (s *TodoService) owned(ctx context.Context, repo todos.Repository, id, userID, action string) (*models.Todo, error) {
	return fetchOwned(ctx, id, userID, entityTodo, action, repo.GetByID,
		func(t *models.Todo) string { return t.UserID })
}

// update runs the shared updateTodo steps around apply.
func (s *TodoService) update(ctx context.Context, id string, validate func(now time.Time) error,
	apply func(repo todos.Repository, now time.Time) (*models.Todo, error)) (*models.Todo, error) {
	userID, err := s.begin(ctx, ratelimit.UpdateTodo)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if validate != nil {
		if err := validate(now); err != nil {
			return nil, err
		}
	}

	repo := s.repo()
	if _, err := s.owned(ctx, repo, id, userID, "update"); err != nil {
		return nil, err
	}

	todo, err := apply(repo, now)
	return vanished(entityTodo, todo, err)
}

func (s *TodoService) UpdateText(ctx context.Context, id, text string) (*models.Todo, error) {
	var clean string
	return s.update(ctx, id,
		func(time.Time) (err error) {
			clean, err = checkTodoText(text)
			return err
		},
		func(repo todos.Repository, now time.Time) (*models.Todo, error) {
			return repo.UpdateText(ctx, id, clean, now)
		})
}

// Toggle flips the completion state of a todo.
func (s *TodoService) Toggle(ctx context.Context, id string) (*models.Todo, error) {
	return s.update(ctx, id, nil,
		func(repo todos.Repository, now time.Time) (*models.Todo, error) {
			return repo.ToggleCompleted(ctx, id, now)
		})
}

// UpdatePriority sets or, with PriorityNone, clears the priority.
func (s *TodoService) UpdatePriority(ctx context.Context, id string, priority models.Priority) (*models.Todo, error) {
	return s.update(ctx, id,
		func(time.Time) error { return checkPriority(priority) },
		func(repo todos.Repository, now time.Time) (*models.Todo, error) {
			return repo.UpdatePriority(ctx, id, priority, now)
		})
}

// UpdateDueDate sets or, with nil, clears the due date.
func (s *TodoService) UpdateDueDate(ctx context.Context, id string, due *time.Time) (*models.Todo, error) {
	return s.update(ctx, id,
		func(now time.Time) error { return checkDueDate(due, now) },
		func(repo todos.Repository, now time.Time) (*models.Todo, error) {
			return repo.UpdateDueDate(ctx, id, due, now)
		})
}

// UpdateTags replaces the tag set. Empty input clears it.
func (s *TodoService) UpdateTags(ctx context.Context, id string, tags []string) (*models.Todo, error) {
	var clean []string
	return s.update(ctx, id,
		func(time.Time) (err error) {
			clean, err = checkTags(tags)
			return err
		},
		func(repo todos.Repository, now time.Time) (*models.Todo, error) {
			return repo.UpdateTags(ctx, id, clean, now)
		})
}

func (s *TodoService) Remove(ctx context.Context, id string) error {
	userID, err := s.begin(ctx, ratelimit.DeleteTodo)
	if err != nil {
		return err
	}

	repo := s.repo()
	if _, err := s.owned(ctx, repo, id, userID, "delete"); err != nil {
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting todo: %w", err)
	}
	return nil
}

// ClearCompleted deletes every completed todo of the caller and returns
// how many were removed.
func (s *TodoService) ClearCompleted(ctx context.Context) (int, error) {
	userID, err := s.begin(ctx, ratelimit.DeleteTodo)
	if err != nil {
		return 0, err
	}

	n, err := s.repo().DeleteCompletedByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error clearing completed todos: %w", err)
	}

	s.logger.Info(ctx, "completed todos cleared", "user_id", userID, "count", n)
	return n, nil
}
