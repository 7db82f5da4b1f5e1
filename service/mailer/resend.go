package mailer

import (
	"context"
	"docuflow/pkg/retry"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// ResendMailer 通过 Resend API 发邮件
type ResendMailer struct {
	client   *resend.Client
	from     string
	retryCfg retry.Config
	log      *zap.Logger
}

// NewResendMailer builds a mailer. baseURL is only set in tests.
func NewResendMailer(apiKey, from, baseURL string, log *zap.Logger) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key is empty")
	}
	client := resend.NewClient(apiKey)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse resend base url: %w", err)
		}
		client.BaseURL = u
	}

	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 2
	cfg.InitialDelay = 300 * time.Millisecond
	cfg.Logger = log

	return &ResendMailer{client: client, from: from, retryCfg: cfg, log: log.Named("mailer")}, nil
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("email has no recipients")
	}
	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	resp, err := retry.DoWithResult(ctx, m.retryCfg, func() (*resend.SendEmailResponse, error) {
		return m.client.Emails.SendWithContext(ctx, req)
	})
	if err != nil {
		return fmt.Errorf("send email %q: %w", msg.Subject, err)
	}
	m.log.Debug("email sent", zap.String("id", resp.Id), zap.Strings("to", msg.To))
	return nil
}
