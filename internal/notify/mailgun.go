package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ginjaninja78/loyalty-card-report/internal/config"
	"github.com/mailgun/mailgun-go/v4"
)

// MailgunSink delivers through the Mailgun HTTP API.
type MailgunSink struct {
	mg      mailgun.Mailgun
	from    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewMailgunSink creates a sink for cfg.Domain using cfg.APIKey.
// cfg.APIBase, if set, overrides the API endpoint (e.g. the EU region).
func NewMailgunSink(cfg config.MailConfig, logger *slog.Logger) *MailgunSink {
	if logger == nil {
		logger = slog.Default()
	}
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		mg.SetAPIBase(cfg.APIBase)
	}
	logger.Debug("Mailgun client initialized", slog.String("domain", cfg.Domain))
	return &MailgunSink{mg: mg, from: cfg.From, timeout: cfg.Timeout, logger: logger}
}

// Send delivers msg. The call is bounded by the configured timeout.
func (s *MailgunSink) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	m := s.mg.NewMessage(s.from, msg.Subject, "", msg.To...)
	m.SetHtml(msg.HTMLBody)
	for _, path := range msg.Attachments {
		m.AddAttachment(path)
	}

	resp, id, err := s.mg.Send(ctx, m)
	if err != nil {
		s.logger.Error("Mailgun send failed",
			slog.String("subject", msg.Subject),
			slog.String("response", resp),
			slog.Any("error", err))
		return fmt.Errorf("mailgun send failed: %w", err)
	}

	s.logger.Info("Mail sent",
		slog.String("provider", "mailgun"),
		slog.String("subject", msg.Subject),
		slog.Any("to", msg.To),
		slog.String("id", id))
	return nil
}
