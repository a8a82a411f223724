package mailer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/netx"
)

// ResendSender posts messages to the Resend HTTP API.
type ResendSender struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewResendSender(apiKey, baseURL string, client *http.Client) *ResendSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ResendSender{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	req := resendRequest{From: msg.From, To: []string{msg.To}, Subject: msg.Subject, HTML: msg.HTML}
	if err := netx.PostJSON(ctx, s.client, s.baseURL+"/emails", s.apiKey, req); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}
