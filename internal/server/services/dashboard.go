package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

// analyticsWindow is the trailing period of the weekly analytics counters.
const analyticsWindow = 7 * 24 * time.Hour

type Summary struct {
	TotalTodos     int       `json:"totalTodos"`
	ActiveTodos    int       `json:"activeTodos"`
	CompletedTodos int       `json:"completedTodos"`
	CompletionRate int       `json:"completionRate"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// RecentTodo is the dashboard table row of a todo.
type RecentTodo struct {
	ID          string          `json:"id"`
	Text        string          `json:"text"`
	Completed   bool            `json:"completed"`
	Priority    models.Priority `json:"priority,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

type PriorityBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	None   int `json:"none"`
}

type WeekActivity struct {
	Created   int `json:"created"`
	Completed int `json:"completed"`
}

type Analytics struct {
	ByPriority PriorityBreakdown `json:"byPriority"`
	ThisWeek   WeekActivity      `json:"thisWeek"`
}

// LoadSummary counts the caller's records in every owned table.
type LoadSummary struct {
	PerTable     map[models.Table]int `json:"perTable"`
	TotalRecords int                  `json:"totalRecords"`
	UserID       string               `json:"userId"`
}

// DashboardService aggregates read-only views over the caller's data.
type DashboardService struct {
	base
}

func NewDashboardService(d Deps) *DashboardService {
	return &DashboardService{base: newBase(d)}
}

// CompletionRate is round(100*completed/total), or 0 without todos.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.todoStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalTodos:     stats.Total,
		ActiveTodos:    stats.Active,
		CompletedTodos: stats.Completed,
		CompletionRate: CompletionRate(stats.Completed, stats.Total),
		LastUpdated:    s.now(),
	}, nil
}

// Recent returns the caller's latest todos.
func (s *DashboardService) Recent(ctx context.Context) ([]RecentTodo, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Todos(s.conn()).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(list) > common.DashboardRecentLimit {
		list = list[:common.DashboardRecentLimit]
	}

	out := make([]RecentTodo, 0, len(list))
	for _, t := range list {
		out = append(out, RecentTodo{
			ID:          t.ID,
			Text:        t.Text,
			Completed:   t.Completed,
			Priority:    t.Priority,
			CreatedAt:   t.CreatedAt,
			CompletedAt: t.CompletedAt,
			Tags:        t.Tags,
		})
	}
	return out, nil
}

func (s *DashboardService) Analytics(ctx context.Context) (*Analytics, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.repomanager.Todos(s.conn()).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	weekAgo := s.now().Add(-analyticsWindow)
	a := &Analytics{}
	for _, t := range list {
		if !t.Completed {
			switch t.Priority {
			case models.PriorityHigh:
				a.ByPriority.High++
			case models.PriorityMedium:
				a.ByPriority.Medium++
			case models.PriorityLow:
				a.ByPriority.Low++
			default:
				a.ByPriority.None++
			}
		}
		if t.CreatedAt.After(weekAgo) {
			a.ThisWeek.Created++
		}
		if t.CompletedAt != nil && t.CompletedAt.After(weekAgo) {
			a.ThisWeek.Completed++
		}
	}
	return a, nil
}

func (s *DashboardService) LoadSummary(ctx context.Context) (*LoadSummary, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	out := &LoadSummary{PerTable: make(map[models.Table]int, len(models.OwnedTables)), UserID: userID}
	for _, table := range models.OwnedTables {
		n, err := s.countTable(ctx, table, userID)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		out.PerTable[table] = n
		out.TotalRecords += n
	}
	return out, nil
}

func (s *DashboardService) countTable(ctx context.Context, table models.Table, userID string) (int, error) {
	db := s.conn()
	switch table {
	case models.TableTodos:
		list, err := s.repomanager.Todos(db).ListByUser(ctx, userID)
		return len(list), err
	case models.TableThreads:
		list, err := s.repomanager.Threads(db).ListByUser(ctx, userID)
		return len(list), err
	case models.TableMessages:
		list, err := s.repomanager.Messages(db).ListByUser(ctx, userID)
		return len(list), err
	case models.TableNotifications:
		list, err := s.repomanager.Notifications(db).ListByUser(ctx, userID)
		return len(list), err
	case models.TablePreferences:
		_, err := s.repomanager.Preferences(db).GetByUserID(ctx, userID)
		if errors.Is(err, common.ErrNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return 1, nil
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
}
