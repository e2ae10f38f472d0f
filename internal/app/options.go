package service

import (
	"github.com/black-mountain1/comb-excel/internal/config"
	"github.com/black-mountain1/comb-excel/internal/domain/tier"
	"github.com/black-mountain1/comb-excel/pkg/logger"
	"github.com/black-mountain1/comb-excel/pkg/metrics"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the metrics manager runs report to.
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithMetricsFile writes a Prometheus textfile to path after every run.
func WithMetricsFile(path string) Option {
	return func(p *Pipeline) {
		p.metricsFile = path
	}
}

// WithSalesPattern sets the glob used to find sales workbooks.
func WithSalesPattern(pattern string) Option {
	return func(p *Pipeline) {
		if pattern != "" {
			p.salesPattern = pattern
		}
	}
}

// WithCustomerFile sets the customer status workbook name.
func WithCustomerFile(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.customerFile = name
		}
	}
}

// WithReportFile sets the output workbook name.
func WithReportFile(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.reportFile = name
		}
	}
}

// WithReadWorkers sets how many sales workbooks are read at once.
func WithReadWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.readWorkers = n
		}
	}
}

// WithColumns sets the sale date and customer status column names.
func WithColumns(date, status string) Option {
	return func(p *Pipeline) {
		if date != "" {
			p.dateColumn = date
		}
		if status != "" {
			p.statusColumn = status
		}
	}
}

// WithUnknownStatusPolicy sets how out-of-domain tiers are handled.
func WithUnknownStatusPolicy(policy tier.Policy) Option {
	return func(p *Pipeline) {
		if policy.Valid() {
			p.policy = policy
		}
	}
}

// FromConfig maps a loaded Config onto pipeline options.
func FromConfig(cfg *config.Config) []Option {
	return []Option{
		WithSalesPattern(cfg.SalesPattern),
		WithCustomerFile(cfg.CustomerFile),
		WithReportFile(cfg.ReportFile),
		WithReadWorkers(cfg.ReadWorkers),
		WithColumns(cfg.DateColumn, cfg.StatusColumn),
		WithUnknownStatusPolicy(tier.Policy(cfg.UnknownStatus)),
		WithMetricsFile(cfg.MetricsFile),
	}
}
