package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/dbx"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/dmitrijs2005/focustodo/internal/server/ratelimit"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/threads"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/todos"
)

const entityThread = "Thread"

// SystemPrompt frames the assistant for a language-model backed Responder.
const SystemPrompt = `You are a helpful AI assistant for a distraction-free todo list application.
You help users manage their tasks, provide suggestions, and answer questions about their todos.
Keep your responses concise and actionable. Focus on helping users stay productive and organized.`

// AgentContext is what a Responder knows about the caller when answering.
type AgentContext struct {
	Stats       models.TodoStats
	ActiveTodos []*models.Todo
	History     []*models.Message
	Question    string
}

// Prompt renders the context as plain text.
func (c AgentContext) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "User has %d total todos (%d active, %d completed).\n\nActive todos:\n",
		c.Stats.Total, c.Stats.Active, c.Stats.Completed)
	for i, t := range c.ActiveTodos {
		fmt.Fprintf(&b, "%d. %s", i+1, t.Text)
		if t.Priority != models.PriorityNone {
			fmt.Fprintf(&b, " [%s]", t.Priority)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nUser's question: %s", c.Question)
	return b.String()
}

// Responder produces the assistant's reply.
type Responder interface {
	Respond(ctx context.Context, ac AgentContext) (string, error)
}

// CannedResponder answers every question with the same sentence about the
// caller's active todo count.
type CannedResponder struct{}

func (CannedResponder) Respond(_ context.Context, ac AgentContext) (string, error) {
	return fmt.Sprintf("I understand you have %d active todos. How can I help you manage them better?", ac.Stats.Active), nil
}

// AgentService manages assistant threads and their messages.
type AgentService struct {
	base
	responder Responder
}

func NewAgentService(d Deps, responder Responder) *AgentService {
	if responder == nil {
		responder = CannedResponder{}
	}
	return &AgentService{base: newBase(d), responder: responder}
}

func (s *AgentService) owned(ctx context.Context, repo threads.Repository, id, userID, action string) (*models.Thread, error) {
	return fetchOwned(ctx, id, userID, entityThread, action, repo.GetByID,
		func(t *models.Thread) string { return t.UserID })
}

// ListThreads returns the caller's threads, newest first. A non-empty
// status narrows the listing.
func (s *AgentService) ListThreads(ctx context.Context, status models.ThreadStatus) ([]*models.Thread, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	repo := s.repomanager.Threads(s.conn())
	if status == "" {
		return repo.ListByUser(ctx, userID)
	}
	return repo.ListByUserAndStatus(ctx, userID, status)
}

// GetMessages returns the messages of a caller-owned thread, oldest first.
func (s *AgentService) GetMessages(ctx context.Context, threadID string) ([]*models.Message, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, s.repomanager.Threads(s.conn()), threadID, userID, "view"); err != nil {
		return nil, err
	}
	return s.repomanager.Messages(s.conn()).ListByThread(ctx, threadID)
}

// assistantEnabled reports whether the caller allows the assistant. Users
// without a preferences record get the default, enabled.
func (s *AgentService) assistantEnabled(ctx context.Context, userID string) (bool, error) {
	prefs, err := s.repomanager.Preferences(s.conn()).GetByUserID(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("load preferences: %w", err)
	}
	return prefs.AIAssistantEnabled, nil
}

func (s *AgentService) CreateThread(ctx context.Context, title string) (*models.Thread, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	enabled, err := s.assistantEnabled(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, &common.AccessError{Kind: common.ErrNotAuthorized, Message: msgAssistantDisabled}
	}

	if err := s.admit(ratelimit.CreateThread, userID); err != nil {
		return nil, err
	}

	title, err = checkThreadTitle(title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	thread, err := s.repomanager.Threads(s.conn()).Create(ctx, &models.Thread{
		ID:        newID(),
		UserID:    userID,
		Title:     title,
		Status:    models.ThreadActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating thread: %w", err)
	}
	return thread, nil
}

func (s *AgentService) setStatus(ctx context.Context, threadID string, status models.ThreadStatus, action string) (*models.Thread, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	repo := s.repomanager.Threads(s.conn())
	if _, err := s.owned(ctx, repo, threadID, userID, action); err != nil {
		return nil, err
	}
	thread, err := repo.SetStatus(ctx, threadID, status, s.now())
	return vanished(entityThread, thread, err)
}

func (s *AgentService) ArchiveThread(ctx context.Context, threadID string) (*models.Thread, error) {
	return s.setStatus(ctx, threadID, models.ThreadArchived, "archive")
}

func (s *AgentService) UnarchiveThread(ctx context.Context, threadID string) (*models.Thread, error) {
	return s.setStatus(ctx, threadID, models.ThreadActive, "unarchive")
}

func (s *AgentService) RenameThread(ctx context.Context, threadID, title string) (*models.Thread, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	title, err = checkThreadTitle(title)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Threads(s.conn())
	if _, err := s.owned(ctx, repo, threadID, userID, "rename"); err != nil {
		return nil, err
	}
	thread, err := repo.UpdateTitle(ctx, threadID, title, s.now())
	return vanished(entityThread, thread, err)
}

// DeleteThread removes a thread together with its messages and returns
// the number of messages removed.
func (s *AgentService) DeleteThread(ctx context.Context, threadID string) (int, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := s.owned(ctx, s.repomanager.Threads(s.conn()), threadID, userID, "delete"); err != nil {
		return 0, err
	}

	var removed int
	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Messages(tx).DeleteByThread(ctx, threadID)
		if err != nil {
			return fmt.Errorf("error deleting messages: %w", err)
		}
		if err := s.repomanager.Threads(tx).Delete(ctx, threadID); err != nil {
			return fmt.Errorf("error deleting thread: %w", err)
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// SendMessage stores the caller's message, asks the Responder for a reply,
// stores the reply and returns its text.
func (s *AgentService) SendMessage(ctx context.Context, threadID, content string) (string, error) {
	userID, err := s.begin(ctx, ratelimit.SendMessage)
	if err != nil {
		return "", err
	}

	content, err = checkMessage(content)
	if err != nil {
		return "", err
	}

	if _, err := s.owned(ctx, s.repomanager.Threads(s.conn()), threadID, userID, "access"); err != nil {
		return "", err
	}

	msgs := s.repomanager.Messages(s.conn())
	if _, err := msgs.Create(ctx, &models.Message{
		ID:        newID(),
		ThreadID:  threadID,
		UserID:    userID,
		Role:      models.RoleUser,
		Content:   content,
		CreatedAt: s.now(),
	}); err != nil {
		return "", fmt.Errorf("error saving message: %w", err)
	}

	ac, err := s.agentContext(ctx, userID, threadID)
	if err != nil {
		return "", err
	}
	ac.Question = content

	reply, err := s.responder.Respond(ctx, ac)
	if err != nil {
		return "", fmt.Errorf("assistant error: %w", err)
	}

	if _, err := msgs.Create(ctx, &models.Message{
		ID:        newID(),
		ThreadID:  threadID,
		UserID:    userID,
		Role:      models.RoleAssistant,
		Content:   reply,
		CreatedAt: s.now(),
	}); err != nil {
		return "", fmt.Errorf("error saving reply: %w", err)
	}

	return reply, nil
}

// agentContext gathers the caller's todo counts, up to ten active todos
// and the recent history of the thread concurrently.
func (s *AgentService) agentContext(ctx context.Context, userID, threadID string) (AgentContext, error) {
	repo := s.repomanager.Todos(s.conn())
	var ac AgentContext

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		active, err := repo.ListByUserAndCompleted(gctx, userID, false)
		if len(active) > common.AgentContextTodoLimit {
			active = active[:common.AgentContextTodoLimit]
		}
		ac.ActiveTodos = active
		return err
	})
	g.Go(func() (err error) {
		ac.Stats.Total, err = todos.CountByUser(gctx, repo, userID)
		return err
	})
	g.Go(func() (err error) {
		ac.Stats.Active, err = todos.CountActiveByUser(gctx, repo, userID)
		return err
	})
	g.Go(func() (err error) {
		ac.Stats.Completed, err = todos.CountCompletedByUser(gctx, repo, userID)
		return err
	})
	g.Go(func() (err error) {
		ac.History, err = s.repomanager.Messages(s.conn()).ListRecentByThread(gctx, threadID, common.MaxMessagesPerThread)
		return err
	})

	if err := g.Wait(); err != nil {
		return AgentContext{}, fmt.Errorf("load assistant context: %w", err)
	}
	return ac, nil
}
