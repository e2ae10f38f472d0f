// Package config defines the report pipeline configuration and its loader.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Supported values for UnknownStatus.
const (
	UnknownStatusReject     = "reject"
	UnknownStatusQuarantine = "quarantine"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// SalesPattern is the glob matched inside the data directory.
	SalesPattern string `koanf:"sales_pattern"`

	// CustomerFile is the customer status workbook name inside the customer directory.
	CustomerFile string `koanf:"customer_file"`

	// ReportFile is the output workbook name inside the output directory.
	ReportFile string `koanf:"report_file"`

	// DateColumn and StatusColumn name the sale date and customer tier columns.
	DateColumn   string `koanf:"date_column"`
	StatusColumn string `koanf:"status_column"`

	// ReadWorkers bounds concurrent sales file reads. 1 reads sequentially.
	ReadWorkers int `koanf:"read_workers"`

	// UnknownStatus selects how out-of-domain tiers are handled: reject or quarantine.
	UnknownStatus string `koanf:"unknown_status"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		SalesPattern:  "sales-*-*.xlsx",
		CustomerFile:  "customer-status.xlsx",
		ReportFile:    "summary_report.xlsx",
		DateColumn:    "date",
		StatusColumn:  "status",
		ReadWorkers:   1,
		UnknownStatus: UnknownStatusReject,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.SalesPattern) == "":
		return fmt.Errorf("%w: sales_pattern must not be empty", ErrInvalidConfig)
	case c.CustomerFile == "" || strings.ContainsRune(c.CustomerFile, filepath.Separator):
		return fmt.Errorf("%w: customer_file must be a plain file name", ErrInvalidConfig)
	case c.ReportFile == "" || strings.ContainsRune(c.ReportFile, filepath.Separator):
		return fmt.Errorf("%w: report_file must be a plain file name", ErrInvalidConfig)
	case c.DateColumn == "" || c.StatusColumn == "":
		return fmt.Errorf("%w: date_column and status_column must not be empty", ErrInvalidConfig)
	case c.ReadWorkers < 1:
		return fmt.Errorf("%w: read_workers must be at least 1, got %d", ErrInvalidConfig, c.ReadWorkers)
	case c.UnknownStatus != UnknownStatusReject && c.UnknownStatus != UnknownStatusQuarantine:
		return fmt.Errorf("%w: unknown_status must be %q or %q, got %q",
			ErrInvalidConfig, UnknownStatusReject, UnknownStatusQuarantine, c.UnknownStatus)
	}
	if _, err := filepath.Match(c.SalesPattern, ""); err != nil {
		return fmt.Errorf("%w: sales_pattern: %w", ErrInvalidConfig, err)
	}
	return nil
}
