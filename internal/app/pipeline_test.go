package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/black-mountain1/comb-excel/internal/adapters/xlsx"
	service "github.com/black-mountain1/comb-excel/internal/app"
	"github.com/black-mountain1/comb-excel/internal/config"
	"github.com/black-mountain1/comb-excel/internal/domain/table"
	"github.com/black-mountain1/comb-excel/internal/domain/tier"
	"github.com/black-mountain1/comb-excel/internal/testsheets"
	"github.com/black-mountain1/comb-excel/pkg/logger"
	"github.com/black-mountain1/comb-excel/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

var salesHeader = []string{"date", "customer", "amount"}

type workspace struct {
	data, out, cust string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	ws := workspace{
		data: filepath.Join(root, "data"),
		out:  filepath.Join(root, "out"),
		cust: filepath.Join(root, "cust"),
	}
	for _, d := range []string{ws.data, ws.out, ws.cust} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return ws
}

func (ws workspace) params() service.Params {
	return service.Params{DataDir: ws.data, OutputDir: ws.out, CustomerDir: ws.cust}
}

func newPipeline(buf *bytes.Buffer, opts ...service.Option) *service.Pipeline {
	if err := logger.Init(logger.WithWriter(buf)); err != nil {
		panic(err)
	}
	base := []service.Option{
		service.WithLogger(logger.Get()),
		service.WithMetrics(metrics.NewManager()),
	}
	return service.New(append(base, opts...)...)
}

func readReport(t *testing.T, path string) *table.Table {
	t.Helper()
	tbl, err := xlsx.ReadTable(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func column(t *table.Table, name string) []string {
	out := make([]string, t.Len())
	for i := range out {
		out[i] = t.Cell(i, name).String()
	}
	return out
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()

	Convey("Given January and February sales and a customer file with only A", t, func() {
		ws := newWorkspace(t)
		testsheets.Write(t, filepath.Join(ws.data, "sales-jan-2023.xlsx"), salesHeader,
			[]any{"2023-01-10", "A", 100},
			[]any{"2023-01-12", "B", 50},
		)
		testsheets.Write(t, filepath.Join(ws.data, "sales-feb-2023.xlsx"), salesHeader,
			[]any{"2023-02-03", "A", 75},
		)
		testsheets.Write(t, filepath.Join(ws.data, "notes.xlsx"), []string{"note"}, []any{"not sales"})
		testsheets.Write(t, filepath.Join(ws.cust, "customer-status.xlsx"), []string{"customer", "status"},
			[]any{"A", "gold"},
		)
		var buf bytes.Buffer

		Convey("When the pipeline runs", func() {
			summary, err := newPipeline(&buf).Run(ctx, ws.params())

			Convey("Then the report holds three rows with A tagged gold ahead of bronze B", func() {
				So(err, ShouldBeNil)
				report := readReport(t, filepath.Join(ws.out, "summary_report.xlsx"))
				So(report.Len(), ShouldEqual, 3)
				So(column(report, "customer"), ShouldResemble, []string{"A", "A", "B"})
				So(column(report, "status"), ShouldResemble, []string{"gold", "gold", "bronze"})
			})

			Convey("And files are combined in lexicographic order", func() {
				So(summary.Files, ShouldResemble, []string{
					filepath.Join(ws.data, "sales-feb-2023.xlsx"),
					filepath.Join(ws.data, "sales-jan-2023.xlsx"),
				})
				report := readReport(t, summary.ReportPath)
				So(column(report, "amount"), ShouldResemble, []string{"75", "100", "50"})
				So(column(report, "index"), ShouldResemble, []string{"0", "1", "2"})
			})

			Convey("And the summary counts rows and tiers", func() {
				So(summary.RunID, ShouldNotBeEmpty)
				So(summary.SalesRows, ShouldEqual, 3)
				So(summary.ReportRows, ShouldEqual, 3)
				So(summary.TierCounts[tier.Gold], ShouldEqual, 2)
				So(summary.TierCounts[tier.Bronze], ShouldEqual, 1)
			})

			Convey("And progress and missing-value lines are logged", func() {
				out := buf.String()
				for _, msg := range []string{
					"Reading sales data",
					"Reading customer data",
					"Processing data",
					"date column has 0 missing values",
					"customer column has 0 missing values",
					"amount column has 0 missing values",
					"Saving summary report",
					"Script complete",
				} {
					So(out, ShouldContainSubstring, msg)
				}
				So(out, ShouldContainSubstring, "run_id="+summary.RunID)
			})
		})

		Convey("When the pipeline runs twice", func() {
			first, err1 := newPipeline(&buf).Run(ctx, ws.params())
			a := readReport(t, first.ReportPath)
			second, err2 := newPipeline(&buf).Run(ctx, ws.params())
			b := readReport(t, second.ReportPath)

			Convey("Then the reports are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(b, ShouldResemble, a)
			})
		})

		Convey("When files are read concurrently", func() {
			summary, err := newPipeline(&buf, service.WithReadWorkers(4)).Run(ctx, ws.params())

			Convey("Then the result matches the sequential order", func() {
				So(err, ShouldBeNil)
				report := readReport(t, summary.ReportPath)
				So(column(report, "amount"), ShouldResemble, []string{"75", "100", "50"})
			})
		})

		Convey("When a start date is given", func() {
			params := ws.params()
			params.StartDate = time.Date(2023, time.January, 11, 0, 0, 0, 0, time.UTC)
			summary, err := newPipeline(&buf).Run(ctx, params)

			Convey("Then earlier sales are left out", func() {
				So(err, ShouldBeNil)
				So(summary.ReportRows, ShouldEqual, 2)
				report := readReport(t, summary.ReportPath)
				So(column(report, "customer"), ShouldResemble, []string{"A", "B"})
			})
		})

		Convey("When a metrics file is configured", func() {
			metricsPath := filepath.Join(ws.out, "comb_excel.prom")
			_, err := newPipeline(&buf, service.WithMetricsFile(metricsPath)).Run(ctx, ws.params())

			Convey("Then the run metrics are written", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(metricsPath)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `comb_excel_report_tier_rows{tier="gold"} 2`)
				So(string(data), ShouldContainSubstring, `comb_excel_report_runs_total{result="success"} 1`)
			})
		})
	})

	Convey("Given an empty data directory", t, func() {
		ws := newWorkspace(t)
		testsheets.Write(t, filepath.Join(ws.cust, "customer-status.xlsx"), []string{"customer", "status"},
			[]any{"A", "gold"},
		)
		var buf bytes.Buffer

		Convey("Then the report has no data rows and no error is raised", func() {
			summary, err := newPipeline(&buf).Run(ctx, ws.params())
			So(err, ShouldBeNil)
			So(summary.ReportRows, ShouldEqual, 0)
			So(readReport(t, summary.ReportPath).Len(), ShouldEqual, 0)
		})
	})

	Convey("Given a corrupt sales file", t, func() {
		ws := newWorkspace(t)
		testsheets.Write(t, filepath.Join(ws.data, "sales-jan-2023.xlsx"), salesHeader, []any{"2023-01-10", "A", 1})
		So(os.WriteFile(filepath.Join(ws.data, "sales-feb-2023.xlsx"), []byte("garbage"), 0o600), ShouldBeNil)
		testsheets.Write(t, filepath.Join(ws.cust, "customer-status.xlsx"), []string{"customer", "status"})
		var buf bytes.Buffer

		Convey("Then the run aborts with a read error naming the file and writes nothing", func() {
			_, err := newPipeline(&buf).Run(ctx, ws.params())
			So(errors.Is(err, xlsx.ErrRead), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "sales-feb-2023.xlsx")
			_, statErr := os.Stat(filepath.Join(ws.out, "summary_report.xlsx"))
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})
	})

	Convey("Given a missing customer file", t, func() {
		ws := newWorkspace(t)
		testsheets.Write(t, filepath.Join(ws.data, "sales-jan-2023.xlsx"), salesHeader, []any{"2023-01-10", "A", 1})
		var buf bytes.Buffer

		Convey("Then the run aborts with a read error", func() {
			_, err := newPipeline(&buf).Run(ctx, ws.params())
			So(errors.Is(err, xlsx.ErrRead), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "customer-status.xlsx")
		})
	})

	Convey("Given a sale with an unparseable date", t, func() {
		ws := newWorkspace(t)
		testsheets.Write(t, filepath.Join(ws.data, "sales-jan-2023.xlsx"), salesHeader, []any{"soon", "A", 1})
		testsheets.Write(t, filepath.Join(ws.cust, "customer-status.xlsx"), []string{"customer", "status"}, []any{"A", "gold"})
		var buf bytes.Buffer

		Convey("Then the run aborts with a schema error", func() {
			_, err := newPipeline(&buf).Run(ctx, ws.params())
			So(errors.Is(err, table.ErrSchema), ShouldBeTrue)
		})
	})

	Convey("Given a customer with an unknown tier", t, func() {
		ws := newWorkspace(t)
		testsheets.Write(t, filepath.Join(ws.data, "sales-jan-2023.xlsx"), salesHeader,
			[]any{"2023-01-10", "A", 1},
			[]any{"2023-01-11", "P", 2},
		)
		testsheets.Write(t, filepath.Join(ws.cust, "customer-status.xlsx"), []string{"customer", "status"},
			[]any{"A", "silver"},
			[]any{"P", "platinum"},
		)
		var buf bytes.Buffer

		Convey("When the default policy applies", func() {
			_, err := newPipeline(&buf).Run(ctx, ws.params())

			Convey("Then the run is rejected", func() {
				So(errors.Is(err, table.ErrSchema), ShouldBeTrue)
			})
		})

		Convey("When configured to quarantine", func() {
			cfg := config.New()
			cfg.UnknownStatus = config.UnknownStatusQuarantine
			summary, err := newPipeline(&buf, service.FromConfig(cfg)...).Run(ctx, ws.params())

			Convey("Then the row is reported separately", func() {
				So(err, ShouldBeNil)
				So(summary.ReportRows, ShouldEqual, 1)
				So(summary.Quarantined, ShouldEqual, 1)
			})
		})
	})
}
