package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	service "github.com/black-mountain1/comb-excel/internal/app"
	"github.com/black-mountain1/comb-excel/internal/config"
	"github.com/black-mountain1/comb-excel/internal/domain/table"
	"github.com/black-mountain1/comb-excel/pkg/logger"
	"github.com/black-mountain1/comb-excel/pkg/metrics"
)

// Process exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `Tool to combine monthly sales reports.

Usage:
  comb-excel [-d date] data_dir output_dir cust_file

Arguments:
  data_dir    Directory where the sales data is stored
  output_dir  Directory where the summary report will be stored
  cust_file   Directory holding the customer account status file

Options:
  -d date     Drop sales dated before this date (e.g. 2023-01-01)

Environment:
  COMB_EXCEL_CONFIG   optional YAML config file
  COMB_EXCEL_*        overrides for config keys (COMB_EXCEL_READ_WORKERS, ...)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliArgs holds the parsed command line.
type cliArgs struct {
	dataDir     string
	outputDir   string
	customerDir string
	startDate   time.Time
}

// parseArgs accepts flags before, between or after the positional arguments.
func parseArgs(args []string, stderr io.Writer) (cliArgs, error) {
	fs := flag.NewFlagSet("comb-excel", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { _, _ = io.WriteString(stderr, usage) }
	start := fs.String("d", "", "start date to include")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return cliArgs{}, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	if len(positional) != 3 {
		fs.Usage()
		return cliArgs{}, fmt.Errorf("expected 3 arguments, got %d", len(positional))
	}
	out := cliArgs{dataDir: positional[0], outputDir: positional[1], customerDir: positional[2]}

	if *start != "" {
		d, err := table.ParseDate(table.Text(*start))
		if err != nil {
			return cliArgs{}, fmt.Errorf("invalid -d value: %w", err)
		}
		out.startDate = d
	}
	return out, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't configured yet
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitError
	}

	if err := logger.Init(logger.WithWriter(stdout), logger.WithJSON(cfg.LogJSON)); err != nil {
		fmt.Fprintf(stderr, "failed to initialize logging: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts := append(service.FromConfig(cfg), service.WithLogger(log), service.WithMetrics(metrics.Default()))
	pipeline := service.New(opts...)

	_, err = pipeline.Run(ctx, service.Params{
		DataDir:     cli.dataDir,
		OutputDir:   cli.outputDir,
		CustomerDir: cli.customerDir,
		StartDate:   cli.startDate,
	})
	if err != nil {
		log.Error(ctx, "report failed", logger.Error(err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	return exitOK
}
