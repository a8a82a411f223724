package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/mailer"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/dmitrijs2005/focustodo/internal/server/ratelimit"
)

const (
	ReasonNotificationsDisabled = "Email notifications disabled"
	ReasonNoActiveTodos         = "No active todos"
)

// Result reports whether an email was sent. Reason explains a skip.
type Result struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// NotificationService renders transactional emails, records each attempt
// and hands the message to the Sender. A record is created as pending
// before delivery and marked sent or failed afterwards.
type NotificationService struct {
	base
	sender  mailer.Sender
	from    string
	siteURL string
}

func NewNotificationService(d Deps, sender mailer.Sender, from, siteURL string) *NotificationService {
	return &NotificationService{base: newBase(d), sender: sender, from: from, siteURL: siteURL}
}

// SendWelcome emails a new user unconditionally.
func (s *NotificationService) SendWelcome(ctx context.Context, userID, email, name string) (*Result, error) {
	html, err := mailer.RenderWelcome(name, s.siteURL)
	if err != nil {
		return nil, fmt.Errorf("render welcome email: %w", err)
	}
	return s.deliver(ctx, userID, models.NotificationWelcome, email, mailer.SubjectWelcome, html)
}

// SendTodoReminder lists the user's active todos. It is skipped when the
// user disabled notifications or has nothing to do.
func (s *NotificationService) SendTodoReminder(ctx context.Context, userID, email string) (*Result, error) {
	enabled, err := s.notificationsEnabled(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return &Result{Reason: ReasonNotificationsDisabled}, nil
	}

	active, err := s.repomanager.Todos(s.conn()).ListByUserAndCompleted(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("load active todos: %w", err)
	}
	if len(active) == 0 {
		return &Result{Reason: ReasonNoActiveTodos}, nil
	}

	html, err := mailer.RenderReminder(active, s.siteURL)
	if err != nil {
		return nil, fmt.Errorf("render reminder email: %w", err)
	}
	return s.deliver(ctx, userID, models.NotificationTodoReminder, email, mailer.SubjectTodoReminder, html)
}

// SendWeeklySummary reports the user's todo counts. It is skipped when the
// user disabled notifications.
func (s *NotificationService) SendWeeklySummary(ctx context.Context, userID, email string) (*Result, error) {
	enabled, err := s.notificationsEnabled(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return &Result{Reason: ReasonNotificationsDisabled}, nil
	}

	stats, err := s.todoStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load summary stats: %w", err)
	}

	html, err := mailer.RenderWeeklySummary(mailer.SummaryStats{
		Created:   stats.Total,
		Completed: stats.Completed,
		Active:    stats.Active,
	}, s.siteURL)
	if err != nil {
		return nil, fmt.Errorf("render weekly summary: %w", err)
	}
	return s.deliver(ctx, userID, models.NotificationWeeklySummary, email, mailer.SubjectWeeklySummary, html)
}

// RemindMe sends the reminder email to the caller.
func (s *NotificationService) RemindMe(ctx context.Context) (*Result, error) {
	userID, email, err := s.recipient(ctx)
	if err != nil {
		return nil, err
	}
	return s.SendTodoReminder(ctx, userID, email)
}

// SummarizeForMe sends the weekly summary email to the caller.
func (s *NotificationService) SummarizeForMe(ctx context.Context) (*Result, error) {
	userID, email, err := s.recipient(ctx)
	if err != nil {
		return nil, err
	}
	return s.SendWeeklySummary(ctx, userID, email)
}

// ListNotifications returns the caller's notification log, newest first.
// A non-empty status narrows the listing.
func (s *NotificationService) ListNotifications(ctx context.Context, status models.NotificationStatus) ([]*models.EmailNotification, error) {
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	repo := s.repomanager.Notifications(s.conn())
	if status == "" {
		return repo.ListByUser(ctx, userID)
	}
	return repo.ListByUserAndStatus(ctx, userID, status)
}

// recipient resolves the caller, applies the sendEmail limit and looks up
// the caller's address.
func (s *NotificationService) recipient(ctx context.Context) (string, string, error) {
	userID, err := s.begin(ctx, ratelimit.SendEmail)
	if err != nil {
		return "", "", err
	}
	user, err := s.repomanager.Users(s.conn()).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", "", common.NotFoundError("User")
		}
		return "", "", fmt.Errorf("load user: %w", err)
	}
	return userID, user.Email, nil
}

func (s *NotificationService) notificationsEnabled(ctx context.Context, userID string) (bool, error) {
	prefs, err := s.repomanager.Preferences(s.conn()).GetByUserID(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load preferences: %w", err)
	}
	return prefs.EmailNotificationsEnabled, nil
}

func (s *NotificationService) deliver(ctx context.Context, userID string, kind models.NotificationType,
	email, subject, html string) (*Result, error) {
	repo := s.repomanager.Notifications(s.conn())

	rec, err := repo.Create(ctx, &models.EmailNotification{
		ID:        newID(),
		UserID:    userID,
		Type:      kind,
		Recipient: email,
		Subject:   subject,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("error recording notification: %w", err)
	}

	sendErr := s.sender.Send(ctx, mailer.Message{
		From:    s.from,
		To:      email,
		Subject: subject,
		HTML:    html,
	})
	if sendErr != nil {
		if err := repo.MarkFailed(ctx, rec.ID, sendErr.Error()); err != nil {
			s.logger.Error(ctx, "mark notification failed", "notification_id", rec.ID, "error", err)
		}
		s.record(kind, models.NotificationFailed)
		s.logger.Warn(ctx, "email delivery failed", "user_id", userID, "type", kind, "error", sendErr)
		return nil, &common.DeliveryError{NotificationID: rec.ID, Cause: sendErr}
	}

	if err := repo.MarkSent(ctx, rec.ID, s.now()); err != nil {
		return nil, fmt.Errorf("error marking notification sent: %w", err)
	}
	s.record(kind, models.NotificationSent)
	s.logger.Info(ctx, "email sent", "user_id", userID, "type", kind, "notification_id", rec.ID)

	return &Result{Success: true}, nil
}

func (s *NotificationService) record(kind models.NotificationType, status models.NotificationStatus) {
	if s.metrics != nil {
		s.metrics.EmailRecorded(string(kind), string(status))
	}
}
