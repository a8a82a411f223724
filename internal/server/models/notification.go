package models

import "time"

type NotificationType string

const (
	NotificationWelcome       NotificationType = "welcome"
	NotificationTodoReminder  NotificationType = "todo_reminder"
	NotificationWeeklySummary NotificationType = "weekly_summary"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// EmailNotification records one delivery attempt. Status moves from pending
// to sent or failed exactly once.
type EmailNotification struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Type      NotificationType   `json:"type"`
	Recipient string             `json:"recipient"`
	Subject   string             `json:"subject"`
	Status    NotificationStatus `json:"status"`
	SentAt    *time.Time         `json:"sentAt,omitempty"`
	Error     string             `json:"error,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}
