// =============================================================================
// Loyalty Card Report - Notification Delivery
// =============================================================================
//
// A Sink delivers one message to its recipients. Three sinks exist:
//
//   mailgun - HTTP API delivery through Mailgun
//   smtp    - direct SMTP delivery
//   log     - writes the message to the run log, used for dry runs
//
// Attachments are paths to run-local files.
//
// =============================================================================

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/loyalty-card-report/internal/config"
)

// Message is one outgoing notification.
type Message struct {
	Subject     string
	HTMLBody    string
	To          []string
	Attachments []string
}

// Sink delivers messages.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// NewSink builds the sink selected by cfg.Provider.
func NewSink(cfg config.MailConfig, logger *slog.Logger) (Sink, error) {
	switch strings.ToLower(cfg.Provider) {
	case "mailgun":
		return NewMailgunSink(cfg, logger), nil
	case "smtp":
		return NewSMTPSink(cfg, logger), nil
	case "", "log":
		return NewLogSink(logger), nil
	}
	return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
}

// =============================================================================
// LOG SINK
// =============================================================================

// LogSink writes messages to the log instead of sending them.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger means slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Send logs msg.
func (s *LogSink) Send(_ context.Context, msg Message) error {
	names := make([]string, len(msg.Attachments))
	for i, a := range msg.Attachments {
		names[i] = filepath.Base(a)
	}
	s.logger.Info("Mail not sent (log sink)",
		slog.String("subject", msg.Subject),
		slog.Any("to", msg.To),
		slog.Any("attachments", names),
		slog.String("body", msg.HTMLBody))
	return nil
}

func validate(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("message %q has no recipients", msg.Subject)
	}
	return nil
}
