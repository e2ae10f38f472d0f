// Package service runs the monthly sales report: it gathers the sales
// workbooks, attaches customer tiers and writes the summary workbook.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/black-mountain1/comb-excel/internal/adapters/collector"
	"github.com/black-mountain1/comb-excel/internal/adapters/xlsx"
	"github.com/black-mountain1/comb-excel/internal/domain/table"
	"github.com/black-mountain1/comb-excel/internal/domain/tier"
	"github.com/black-mountain1/comb-excel/pkg/logger"
	"github.com/black-mountain1/comb-excel/pkg/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Params are the per-run inputs supplied on the command line.
type Params struct {
	// DataDir holds the monthly sales workbooks.
	DataDir string
	// OutputDir receives the summary report.
	OutputDir string
	// CustomerDir holds the customer status workbook.
	CustomerDir string
	// StartDate, when non-zero, drops sales dated before it.
	StartDate time.Time
}

// Summary describes a finished run.
type Summary struct {
	RunID       string
	Files       []string
	SalesRows   int
	ReportRows  int
	Quarantined int
	TierCounts  map[tier.Tier]int
	ReportPath  string
	Duration    time.Duration
}

// Pipeline wires the collector, reader, aggregator, tier resolver and
// report writer into a single run.
type Pipeline struct {
	logger      logger.Logger
	metrics     *metrics.Manager
	metricsFile string

	salesPattern string
	customerFile string
	reportFile   string
	readWorkers  int
	dateColumn   string
	statusColumn string
	policy       tier.Policy

	now func() time.Time
}

// New constructs a Pipeline with default configuration.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		metrics:      metrics.Default(),
		salesPattern: "sales-*-*.xlsx",
		customerFile: "customer-status.xlsx",
		reportFile:   "summary_report.xlsx",
		readWorkers:  1,
		dateColumn:   tier.DefaultDateColumn,
		statusColumn: tier.DefaultStatusColumn,
		policy:       tier.PolicyReject,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logger.Get()
	}
	return p
}

// Run executes every stage in order and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context, params Params) (summary *Summary, err error) {
	started := p.now()
	runID := uuid.NewString()
	log := p.logger.With(logger.String("run_id", runID))

	defer func() {
		p.metrics.RecordRun(err, p.now())
		p.flushMetrics(ctx, log)
	}()

	log.Info(ctx, "Reading sales data", logger.String("dir", params.DataDir), logger.String("pattern", p.salesPattern))
	files, err := timed(p, metrics.StageCollect, func() ([]string, error) {
		return collector.Collect(ctx, params.DataDir, p.salesPattern)
	})
	if err != nil {
		return nil, fmt.Errorf("collect sales files: %w", err)
	}
	if len(files) == 0 {
		log.Warn(ctx, "no sales files matched", logger.String("dir", params.DataDir))
	}

	tables, err := timed(p, metrics.StageRead, func() ([]*table.Table, error) {
		return p.readSales(ctx, log, files)
	})
	if err != nil {
		return nil, fmt.Errorf("read sales data: %w", err)
	}
	sales, _ := timed(p, metrics.StageConcat, func() (*table.Table, error) {
		return table.Concat(tables...), nil
	})
	log.Info(ctx, "combined sales data", logger.Int("files", len(files)), logger.Int("rows", sales.Len()))

	customerPath := filepath.Join(params.CustomerDir, p.customerFile)
	log.Info(ctx, "Reading customer data", logger.String("file", customerPath))
	customers, err := xlsx.ReadTable(ctx, customerPath)
	if err != nil {
		p.metrics.RecordFileFailed()
		return nil, fmt.Errorf("read customer data: %w", err)
	}
	p.metrics.RecordFileRead(customers.Len())

	log.Info(ctx, "Processing data")
	p.reportMissing(ctx, log, sales)

	res, err := timed(p, metrics.StageResolve, func() (*tier.Result, error) {
		return p.resolver(log, params).Resolve(ctx, sales, customers)
	})
	if err != nil {
		return nil, fmt.Errorf("process data: %w", err)
	}
	p.reportResolution(ctx, log, res)

	log.Info(ctx, "Saving summary report", logger.String("dir", params.OutputDir))
	path, err := timed(p, metrics.StageWrite, func() (string, error) {
		return xlsx.WriteReport(ctx, params.OutputDir, p.reportFile, res.Table, xlsx.WithQuarantine(res.Quarantined))
	})
	if err != nil {
		return nil, fmt.Errorf("save summary report: %w", err)
	}
	p.metrics.SetReportRows(res.Table.Len())

	summary = &Summary{
		RunID:       runID,
		Files:       files,
		SalesRows:   sales.Len(),
		ReportRows:  res.Table.Len(),
		Quarantined: res.Quarantined.Len(),
		TierCounts:  res.TierCounts,
		ReportPath:  path,
		Duration:    p.now().Sub(started),
	}
	log.Info(ctx, "Script complete",
		logger.String("report", path),
		logger.Int("rows", summary.ReportRows),
		logger.Duration("elapsed", summary.Duration),
	)
	return summary, nil
}

func (p *Pipeline) resolver(log logger.Logger, params Params) *tier.Resolver {
	opts := []tier.Option{
		tier.WithDateColumn(p.dateColumn),
		tier.WithStatusColumn(p.statusColumn),
		tier.WithPolicy(p.policy),
		tier.WithLogger(log),
	}
	if !params.StartDate.IsZero() {
		opts = append(opts, tier.WithStartDate(params.StartDate))
	}
	return tier.NewResolver(opts...)
}

// readSales loads files in discovery order. With more than one worker the
// files are read concurrently; results keep their discovery position.
func (p *Pipeline) readSales(ctx context.Context, log logger.Logger, files []string) ([]*table.Table, error) {
	tables := make([]*table.Table, len(files))
	read := func(ctx context.Context, i int) error {
		t, err := xlsx.ReadTable(ctx, files[i])
		if err != nil {
			p.metrics.RecordFileFailed()
			return err
		}
		p.metrics.RecordFileRead(t.Len())
		log.Debug(ctx, "read sales file", logger.String("file", files[i]), logger.Int("rows", t.Len()))
		tables[i] = t
		return nil
	}

	if p.readWorkers <= 1 {
		for i := range files {
			if err := read(ctx, i); err != nil {
				return nil, err
			}
		}
		return tables, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.readWorkers)
	for i := range files {
		i := i
		g.Go(func() error { return read(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// reportMissing logs one line per column with its missing-value count.
func (p *Pipeline) reportMissing(ctx context.Context, log logger.Logger, sales *table.Table) {
	for _, c := range table.MissingCounts(sales) {
		log.Info(ctx, fmt.Sprintf("%s column has %d missing values", c.Column, c.Missing),
			logger.String("column", c.Column),
			logger.Int("missing", c.Missing),
		)
		p.metrics.SetMissingValues(c.Column, c.Missing)
	}
}

func (p *Pipeline) reportResolution(ctx context.Context, log logger.Logger, res *tier.Result) {
	p.metrics.SetJoinRows("matched", res.Matched)
	p.metrics.SetJoinRows("unmatched", res.Unmatched)
	p.metrics.SetJoinRows("fanout", res.FanOut)
	p.metrics.SetJoinRows("filtered", res.Filtered)
	p.metrics.SetJoinRows("quarantined", res.Quarantined.Len())

	fields := []logger.Field{
		logger.Int("matched", res.Matched),
		logger.Int("unmatched", res.Unmatched),
	}
	for _, t := range tier.All() {
		p.metrics.SetTierRows(t.String(), res.TierCounts[t])
		fields = append(fields, logger.Int(t.String(), res.TierCounts[t]))
	}
	if res.Filtered > 0 {
		fields = append(fields, logger.Int("filtered", res.Filtered))
	}
	log.Info(ctx, "resolved customer tiers", fields...)
}

func (p *Pipeline) flushMetrics(ctx context.Context, log logger.Logger) {
	if p.metricsFile == "" {
		return
	}
	if err := p.metrics.WriteTextfile(p.metricsFile); err != nil {
		log.Warn(ctx, "could not write metrics textfile", logger.Error(err))
	}
}

// timed runs fn and records its duration under stage.
func timed[T any](p *Pipeline, stage string, fn func() (T, error)) (T, error) {
	start := p.now()
	v, err := fn()
	p.metrics.ObserveStage(stage, p.now().Sub(start))
	return v, err
}
