package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
source:
  backend: smb
  host: fs01.local
  share: reports
  user: svc-reports
  dir: "Отчеты/Карты СТО"
report:
  output_file: out/report.xlsx
mail:
  provider: smtp
  from: reports@example.com
  smtp_host: smtp.example.com
  to_success: [sales@example.com, boss@example.com]
  to_error: [admin@example.com]
logging:
  level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "fs01.local", cfg.Source.Host)
	assert.Equal(t, 445, cfg.Source.Port)
	assert.Equal(t, 30*time.Second, cfg.Source.DialTimeout)
	assert.Equal(t, ".xlsx", cfg.Source.Extension)
	assert.Equal(t, 6, cfg.Source.HeaderRow)

	assert.Equal(t, "out/report.xlsx", cfg.Report.OutputFile)
	assert.Equal(t, "Данные", cfg.Report.SheetName)
	assert.Equal(t, "р.", cfg.Report.CurrencySuffix)

	assert.Equal(t, 25, cfg.Archive.LookbackDays)
	assert.Equal(t, "Отчёты за ", cfg.Archive.Prefix)
	assert.Equal(t, "ru", cfg.Archive.Locale)

	assert.Equal(t, 587, cfg.Mail.SMTPPort)
	assert.Equal(t, []string{"sales@example.com", "boss@example.com"}, cfg.Mail.ToSuccess)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("LOYALTY_SOURCE_PASSWORD", "s3cret")
	t.Setenv("LOYALTY_MAIL_SMTP_PASSWORD", "mailpass")
	t.Setenv("LOYALTY_MAIL_TO_ERROR", "ops@example.com,admin@example.com")
	t.Setenv("LOYALTY_ARCHIVE_LOOKBACK_DAYS", "20")
	// Bare variables must not leak into the share credentials.
	t.Setenv("USER", "shell-user")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Source.Password)
	assert.Equal(t, "svc-reports", cfg.Source.User)
	assert.Equal(t, "mailpass", cfg.Mail.SMTPPassword)
	assert.Equal(t, []string{"ops@example.com", "admin@example.com"}, cfg.Mail.ToError)
	assert.Equal(t, 20, cfg.Archive.LookbackDays)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing source dir",
			body: `
source: {backend: local, local_root: /srv}
mail: {to_success: [a@example.com], to_error: [b@example.com]}
`,
		},
		{
			name: "smb without host",
			body: `
source: {backend: smb, share: s, dir: d}
mail: {to_success: [a@example.com], to_error: [b@example.com]}
`,
		},
		{
			name: "bad recipient",
			body: `
source: {backend: local, local_root: /srv, dir: in}
mail: {to_success: [not-an-address], to_error: [b@example.com]}
`,
		},
		{
			name: "no error recipients",
			body: `
source: {backend: local, local_root: /srv, dir: in}
mail: {to_success: [a@example.com]}
`,
		},
		{
			name: "mailgun without key",
			body: `
source: {backend: local, local_root: /srv, dir: in}
mail: {provider: mailgun, from: r@example.com, domain: mg.example.com, to_success: [a@example.com], to_error: [b@example.com]}
`,
		},
		{
			name: "unknown locale",
			body: `
source: {backend: local, local_root: /srv, dir: in}
archive: {locale: de}
mail: {to_success: [a@example.com], to_error: [b@example.com]}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("LOYALTY_SOURCE_BACKEND", "local")
	t.Setenv("LOYALTY_SOURCE_LOCAL_ROOT", "/srv/reports")
	t.Setenv("LOYALTY_SOURCE_DIR", "in")
	t.Setenv("LOYALTY_MAIL_TO_SUCCESS", "a@example.com")
	t.Setenv("LOYALTY_MAIL_TO_ERROR", "b@example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/reports", cfg.Source.LocalRoot)
	assert.Equal(t, "log", cfg.Mail.Provider)
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "source: [unterminated"))
	assert.Error(t, err)
}
