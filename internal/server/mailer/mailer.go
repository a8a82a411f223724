// Package mailer renders the transactional emails and hands them to a
// delivery backend.
package mailer

import (
	"context"
	"fmt"
)

// Message is a rendered email ready for delivery.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers one message. Implementations do not retry.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const (
	SubjectWelcome       = "Welcome to Distraction-Free Todos!"
	SubjectTodoReminder  = "You have pending todos"
	SubjectWeeklySummary = "Your weekly todo summary"
)

// FormatFrom builds an RFC 5322 "Name <address>" sender.
func FormatFrom(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
