// =============================================================================
// Loyalty Card Report - Configuration Module
// =============================================================================
//
// This module loads the run configuration. Values are resolved in order:
//   1. config.yaml (path given by --config)
//   2. a .env file next to the working directory, if present
//   3. LOYALTY_* environment variables, which override the file
//   4. defaults for anything still unset
//
// Secrets (share password, mail API key, SMTP password) are expected to come
// from the environment, e.g. LOYALTY_SOURCE_PASSWORD or LOYALTY_MAIL_API_KEY.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "LOYALTY"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the whole run configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source" envconfig:"SOURCE"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Archive ArchiveConfig `yaml:"archive" envconfig:"ARCHIVE"`
	Mail    MailConfig    `yaml:"mail" envconfig:"MAIL"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// SourceConfig locates the shared directory holding the station reports.
type SourceConfig struct {
	// Backend selects the store: "smb" for a network share, "local" for a
	// directory on this machine.
	// Default: "smb"
	Backend string `yaml:"backend" validate:"oneof=smb local"`

	// Host, Port, Share, User, Password and Domain address the SMB share.
	Host     string `yaml:"host" validate:"required_if=Backend smb"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	Share    string `yaml:"share" validate:"required_if=Backend smb"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Domain   string `yaml:"domain"`

	// DialTimeout bounds the connection attempt to the share.
	// Default: 30s
	DialTimeout time.Duration `yaml:"dial_timeout" split_words:"true"`

	// LocalRoot is the store root when Backend is "local".
	LocalRoot string `yaml:"local_root" split_words:"true" validate:"required_if=Backend local"`

	// Dir is the source directory, relative to the share or local root.
	Dir string `yaml:"dir" validate:"required"`

	// Extension is the tracked source file extension.
	// Default: ".xlsx"
	Extension string `yaml:"extension"`

	// HeaderRow is the 0-based row of the column headers in each source.
	// Default: 6
	HeaderRow int `yaml:"header_row" split_words:"true" validate:"gte=0"`
}

// ReportConfig controls the produced workbook.
type ReportConfig struct {
	// OutputFile is the run-local path of the report.
	// Default: "Продажи по картам лояльности СТО.xlsx"
	OutputFile string `yaml:"output_file" split_words:"true"`

	SheetName      string `yaml:"sheet_name" split_words:"true"`
	Caption        string `yaml:"caption"`
	TotalsLabel    string `yaml:"totals_label" split_words:"true"`
	CurrencySuffix string `yaml:"currency_suffix" split_words:"true"`
}

// ArchiveConfig controls the dated holding directory.
type ArchiveConfig struct {
	// LookbackDays is subtracted from the run date to find the period.
	// Default: 25
	LookbackDays int `yaml:"lookback_days" split_words:"true" validate:"gte=0"`

	// Prefix is prepended to the period label, e.g. "Отчёты за ".
	Prefix string `yaml:"prefix"`

	// Locale selects month names: "ru" or "en".
	// Default: "ru"
	Locale string `yaml:"locale" validate:"oneof=ru en"`
}

// MailConfig controls report delivery.
type MailConfig struct {
	// Provider is "mailgun", "smtp" or "log".
	// Default: "log"
	Provider string `yaml:"provider" validate:"oneof=mailgun smtp log"`

	From string `yaml:"from" validate:"required_unless=Provider log"`

	// Mailgun settings.
	Domain  string `yaml:"domain" validate:"required_if=Provider mailgun"`
	APIKey  string `yaml:"api_key" split_words:"true" validate:"required_if=Provider mailgun"`
	APIBase string `yaml:"api_base" split_words:"true"`

	// SMTP settings.
	SMTPHost     string `yaml:"smtp_host" split_words:"true" validate:"required_if=Provider smtp"`
	SMTPPort     int    `yaml:"smtp_port" split_words:"true"`
	SMTPUser     string `yaml:"smtp_user" split_words:"true"`
	SMTPPassword string `yaml:"smtp_password" split_words:"true"`

	// ToSuccess receives the report; ToError receives failure notices.
	ToSuccess []string `yaml:"to_success" split_words:"true" validate:"min=1,dive,email"`
	ToError   []string `yaml:"to_error" split_words:"true" validate:"min=1,dive,email"`

	// Timeout bounds one delivery.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig controls the run log.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format is "text" or "json".
	Format string `yaml:"format" validate:"oneof=text json"`

	// File, if set, receives a rotated copy of the log.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" split_words:"true"`
	MaxBackups int    `yaml:"max_backups" split_words:"true"`
	MaxAgeDays int    `yaml:"max_age_days" split_words:"true"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration file at path, applies .env and environment
// overrides, fills defaults and validates the result. A missing file is
// allowed when the environment supplies everything required.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Environment only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Source.Backend == "" {
		cfg.Source.Backend = "smb"
	}
	if cfg.Source.Port == 0 {
		cfg.Source.Port = 445
	}
	if cfg.Source.DialTimeout == 0 {
		cfg.Source.DialTimeout = 30 * time.Second
	}
	if cfg.Source.Extension == "" {
		cfg.Source.Extension = ".xlsx"
	}
	if cfg.Source.HeaderRow == 0 {
		cfg.Source.HeaderRow = 6
	}

	if cfg.Report.OutputFile == "" {
		cfg.Report.OutputFile = "Продажи по картам лояльности СТО.xlsx"
	}
	if cfg.Report.SheetName == "" {
		cfg.Report.SheetName = "Данные"
	}
	if cfg.Report.Caption == "" {
		cfg.Report.Caption = "Продажи по картам лояльности СТО"
	}
	if cfg.Report.TotalsLabel == "" {
		cfg.Report.TotalsLabel = "Компания MaCar:"
	}
	if cfg.Report.CurrencySuffix == "" {
		cfg.Report.CurrencySuffix = "р."
	}

	if cfg.Archive.LookbackDays == 0 {
		cfg.Archive.LookbackDays = 25
	}
	if cfg.Archive.Prefix == "" {
		cfg.Archive.Prefix = "Отчёты за "
	}
	if cfg.Archive.Locale == "" {
		cfg.Archive.Locale = "ru"
	}

	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "log"
	}
	if cfg.Mail.SMTPPort == 0 {
		cfg.Mail.SMTPPort = 587
	}
	if cfg.Mail.Timeout == 0 {
		cfg.Mail.Timeout = 60 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 10
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = 31
	}
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}
