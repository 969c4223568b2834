package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ginjaninja78/loyalty-card-report/internal/config"
	"gopkg.in/gomail.v2"
)

// SMTPSink delivers over SMTP with STARTTLS when the server offers it.
type SMTPSink struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewSMTPSink creates a sink for cfg.SMTPHost.
func NewSMTPSink(cfg config.MailConfig, logger *slog.Logger) *SMTPSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSink{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:    cfg.From,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Send delivers msg. gomail has no context support, so the dial runs in its
// own goroutine and Send returns when ctx ends.
func (s *SMTPSink) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	m := s.build(msg)
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
	case <-ctx.Done():
		return fmt.Errorf("smtp send aborted: %w", ctx.Err())
	}

	s.logger.Info("Mail sent",
		slog.String("provider", "smtp"),
		slog.String("subject", msg.Subject),
		slog.Any("to", msg.To))
	return nil
}

func (s *SMTPSink) build(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)
	for _, path := range msg.Attachments {
		m.Attach(path)
	}
	return m
}
