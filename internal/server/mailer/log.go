package mailer

import (
	"context"

	"github.com/dmitrijs2005/focustodo/internal/logging"
)

// LogSender logs messages instead of delivering them. Used in development.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info(ctx, "email not delivered (log mailer)",
		"from", msg.From, "to", msg.To, "subject", msg.Subject, "html_bytes", len(msg.HTML))
	return nil
}
