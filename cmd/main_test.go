package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/black-mountain1/comb-excel/internal/adapters/xlsx"
	"github.com/black-mountain1/comb-excel/internal/testsheets"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseArgs(t *testing.T) {
	convey.Convey("Given command lines", t, func() {
		var stderr bytes.Buffer

		convey.Convey("When the three positionals are given", func() {
			cli, err := parseArgs([]string{"data", "out", "cust"}, &stderr)

			convey.Convey("Then they map to the directories", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cli.dataDir, convey.ShouldEqual, "data")
				convey.So(cli.outputDir, convey.ShouldEqual, "out")
				convey.So(cli.customerDir, convey.ShouldEqual, "cust")
				convey.So(cli.startDate.IsZero(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When -d follows the positionals", func() {
			cli, err := parseArgs([]string{"data", "out", "cust", "-d", "2023-03-01"}, &stderr)

			convey.Convey("Then the start date is parsed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cli.startDate.Equal(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)), convey.ShouldBeTrue)
				convey.So(cli.customerDir, convey.ShouldEqual, "cust")
			})
		})

		convey.Convey("When -d precedes the positionals", func() {
			cli, err := parseArgs([]string{"-d", "03/01/2023", "data", "out", "cust"}, &stderr)

			convey.Convey("Then both are accepted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cli.dataDir, convey.ShouldEqual, "data")
				convey.So(cli.startDate.Month(), convey.ShouldEqual, time.March)
			})
		})

		convey.Convey("When a positional is missing", func() {
			_, err := parseArgs([]string{"data", "out"}, &stderr)

			convey.Convey("Then usage is printed and an error returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "Usage:")
			})
		})

		convey.Convey("When -d is not a date", func() {
			_, err := parseArgs([]string{"-d", "yesterday", "data", "out", "cust"}, &stderr)

			convey.Convey("Then an error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "-d")
			})
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given sales, customer and output directories", t, func() {
		ctx := context.Background()
		root := t.TempDir()
		data, out, cust := filepath.Join(root, "data"), filepath.Join(root, "out"), filepath.Join(root, "cust")
		for _, d := range []string{data, out, cust} {
			convey.So(os.Mkdir(d, 0o755), convey.ShouldBeNil)
		}
		testsheets.Write(t, filepath.Join(data, "sales-jan-2023.xlsx"), []string{"date", "customer"},
			[]any{"2023-01-02", "B"},
			[]any{"2023-01-03", "A"},
		)
		testsheets.Write(t, filepath.Join(cust, "customer-status.xlsx"), []string{"customer", "status"},
			[]any{"A", "silver"},
		)
		var stdout, stderr bytes.Buffer

		convey.Convey("When the tool runs", func() {
			code := run(ctx, []string{data, out, cust}, &stdout, &stderr)

			convey.Convey("Then it exits zero and writes the report", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(stderr.String(), convey.ShouldBeEmpty)
				report, err := xlsx.ReadTable(ctx, filepath.Join(out, "summary_report.xlsx"))
				convey.So(err, convey.ShouldBeNil)
				convey.So(report.Cell(0, "customer").Text(), convey.ShouldEqual, "A")
				convey.So(report.Cell(1, "status").Text(), convey.ShouldEqual, "bronze")
				convey.So(stdout.String(), convey.ShouldContainSubstring, "Script complete")
			})
		})

		convey.Convey("When the output directory does not exist", func() {
			code := run(ctx, []string{data, filepath.Join(root, "nowhere"), cust}, &stdout, &stderr)

			convey.Convey("Then it exits non-zero with a message on stderr", func() {
				convey.So(code, convey.ShouldEqual, exitError)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "summary_report.xlsx")
			})
		})

		convey.Convey("When arguments are missing", func() {
			code := run(ctx, []string{data}, &stdout, &stderr)

			convey.Convey("Then it exits with the usage code", func() {
				convey.So(code, convey.ShouldEqual, exitUsage)
			})
		})

		convey.Convey("When help is requested", func() {
			code := run(ctx, []string{"-h"}, &stdout, &stderr)

			convey.Convey("Then it exits zero", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "cust_file")
			})
		})
	})
}
