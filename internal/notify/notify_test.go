package notify

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ginjaninja78/loyalty-card-report/internal/config"
	"github.com/ginjaninja78/loyalty-card-report/internal/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func september(t *testing.T) period.Period {
	t.Helper()
	p, err := period.Derive(time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC), 25, "ru")
	require.NoError(t, err)
	return p
}

func TestSuccessMessage(t *testing.T) {
	msg, err := Success(september(t), []string{"sales@example.com"}, "/tmp/report.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "Продажи по картам лояльности СТО за 09.2026", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "за 09.2026г. во вложении")
	assert.Equal(t, []string{"sales@example.com"}, msg.To)
	assert.Equal(t, []string{"/tmp/report.xlsx"}, msg.Attachments)
}

func TestErrorMessages(t *testing.T) {
	noData, err := NoData(`\\fs01\reports\in`, []string{"admin@example.com"})
	require.NoError(t, err)
	assert.Equal(t, ErrorSubject, noData.Subject)
	assert.Contains(t, noData.HTMLBody, "Нет отчета продаж по картам СТО за предыдущий месяц.<br>")
	assert.Contains(t, noData.HTMLBody, `\\fs01\reports\in`)
	assert.Empty(t, noData.Attachments)

	malformed, err := Malformed("in", "a<b>.xlsx", "expected 3 columns", []string{"admin@example.com"})
	require.NoError(t, err)
	assert.Equal(t, ErrorSubject, malformed.Subject)
	assert.NotEqual(t, noData.HTMLBody, malformed.HTMLBody)
	assert.Contains(t, malformed.HTMLBody, "a&lt;b&gt;.xlsx")
	assert.Contains(t, malformed.HTMLBody, "expected 3 columns")
}

func TestNewSink(t *testing.T) {
	tests := []struct {
		provider string
		want     any
	}{
		{"log", &LogSink{}},
		{"", &LogSink{}},
		{"smtp", &SMTPSink{}},
		{"mailgun", &MailgunSink{}},
	}
	for _, tt := range tests {
		sink, err := NewSink(config.MailConfig{Provider: tt.provider, Domain: "mg.example.com", APIKey: "key"}, nil)
		require.NoError(t, err, tt.provider)
		assert.IsType(t, tt.want, sink, tt.provider)
	}

	_, err := NewSink(config.MailConfig{Provider: "pigeon"}, nil)
	assert.Error(t, err)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	err := sink.Send(context.Background(), Message{
		Subject:     "subject",
		To:          []string{"a@example.com"},
		Attachments: []string{"/tmp/out/report.xlsx"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "subject=subject")
	assert.Contains(t, buf.String(), "report.xlsx")
	assert.NotContains(t, buf.String(), "/tmp/out")
}

func TestMailgunSink(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(report, []byte("workbook"), 0o644))

	var (
		mu         sync.Mutex
		subject    string
		html       string
		to         []string
		attachment string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			http.NotFound(w, r)
			return
		}
		require.NoError(t, r.ParseMultipartForm(1<<20))
		mu.Lock()
		subject = r.FormValue("subject")
		html = r.FormValue("html")
		to = r.MultipartForm.Value["to"]
		if f, _, err := r.FormFile("attachment"); err == nil {
			data, _ := io.ReadAll(f)
			attachment = string(data)
			f.Close()
		}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	sink := NewMailgunSink(config.MailConfig{
		From:    "reports@example.com",
		Domain:  "mg.example.com",
		APIKey:  "key-test",
		APIBase: srv.URL + "/v3",
		Timeout: 5 * time.Second,
	}, nil)

	err := sink.Send(context.Background(), Message{
		Subject:     "Отчет",
		HTMLBody:    "<p>body</p>",
		To:          []string{"a@example.com", "b@example.com"},
		Attachments: []string{report},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Отчет", subject)
	assert.Equal(t, "<p>body</p>", html)
	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, to)
	assert.Equal(t, "workbook", attachment)
}

func TestSinksRejectEmptyRecipients(t *testing.T) {
	cfg := config.MailConfig{From: "r@example.com", Domain: "mg.example.com", APIKey: "k", SMTPHost: "localhost", SMTPPort: 25}
	for _, sink := range []Sink{NewMailgunSink(cfg, nil), NewSMTPSink(cfg, nil)} {
		assert.Error(t, sink.Send(context.Background(), Message{Subject: "s"}))
	}
}

func TestSMTPMessage(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(report, []byte("workbook"), 0o644))

	sink := NewSMTPSink(config.MailConfig{From: "reports@example.com", SMTPHost: "localhost", SMTPPort: 25}, nil)
	m := sink.build(Message{
		Subject:     "Monthly report",
		HTMLBody:    "<p>body</p>",
		To:          []string{"a@example.com"},
		Attachments: []string{report},
	})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "From: reports@example.com")
	assert.Contains(t, out, "To: a@example.com")
	assert.Contains(t, out, "Subject: Monthly report")
	assert.Contains(t, out, "text/html")
	assert.Contains(t, out, `filename="report.xlsx"`)
}
