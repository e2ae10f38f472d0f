package tier

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/black-mountain1/comb-excel/internal/domain/table"
	"github.com/black-mountain1/comb-excel/pkg/logger"
)

// Default column names.
const (
	DefaultDateColumn   = "date"
	DefaultStatusColumn = "status"
)

// Result is the enriched sales table plus join bookkeeping.
type Result struct {
	// Table holds every accepted row, ordered gold, silver, bronze.
	Table *table.Table
	// Quarantined holds rows whose status fell outside the known tiers
	// under PolicyQuarantine. Nil otherwise.
	Quarantined *table.Table

	Matched    int
	Unmatched  int
	FanOut     int
	Filtered   int
	TierCounts map[Tier]int
}

// Resolver enriches sales rows with customer tiers.
type Resolver struct {
	dateColumn   string
	statusColumn string
	policy       Policy
	start        time.Time
	logger       logger.Logger
}

// NewResolver constructs a Resolver with default columns and the reject policy.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		dateColumn:   DefaultDateColumn,
		statusColumn: DefaultStatusColumn,
		policy:       PolicyReject,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve normalizes sale dates, left-joins customers on their shared
// columns, defaults absent statuses to bronze and stable-sorts by tier.
// Neither input is modified.
func (r *Resolver) Resolve(ctx context.Context, sales, customers *table.Table) (*Result, error) {
	dated, err := table.NormalizeDates(sales, r.dateColumn)
	if err != nil {
		return nil, err
	}

	res := &Result{TierCounts: make(map[Tier]int, len(names))}

	if !r.start.IsZero() {
		before := dated.Len()
		dc := dated.ColumnIndex(r.dateColumn)
		dated = dated.Filter(func(_ int, row []table.Value) bool {
			return dc >= 0 && !row[dc].IsMissing() && !row[dc].Date().Before(r.start)
		})
		dated.ResetIndex()
		res.Filtered = before - dated.Len()
	}

	on := table.SharedColumns(dated, customers)
	if len(on) == 0 && customers.Len() > 0 && dated.Len() > 0 {
		return nil, &table.SchemaError{Row: -1, Reason: "sales and customer tables share no columns"}
	}

	joined, stats := table.LeftJoin(dated, customers, on)
	res.Matched, res.Unmatched, res.FanOut = stats.Matched, stats.Unmatched, stats.FanOut
	if stats.FanOut > 0 && r.logger != nil {
		r.logger.Warn(ctx, "customer keys matched more than one customer row",
			logger.Int("extraRows", stats.FanOut),
		)
	}

	sc := joined.ColumnIndex(r.statusColumn)
	if sc < 0 {
		joined.Columns = append(joined.Columns, r.statusColumn)
		for i := range joined.Rows {
			joined.Rows[i] = append(joined.Rows[i], table.Missing())
		}
		sc = len(joined.Columns) - 1
	}

	ranks := make([]Tier, joined.Len())
	var rejected []int
	for i, row := range joined.Rows {
		t, ok := r.tierOf(row[sc])
		if !ok {
			if r.policy == PolicyReject {
				return nil, &table.SchemaError{
					Column: r.statusColumn,
					Row:    i,
					Reason: fmt.Sprintf("status %q is not one of gold, silver, bronze", row[sc].String()),
				}
			}
			rejected = append(rejected, i)
			continue
		}
		row[sc] = table.Text(t.String())
		ranks[i] = t
	}

	accepted := joined
	if len(rejected) > 0 {
		res.Quarantined = joined.Reorder(rejected)
		quarantined := make(map[int]bool, len(rejected))
		for _, i := range rejected {
			quarantined[i] = true
		}
		accepted = joined.Filter(func(i int, _ []table.Value) bool { return !quarantined[i] })
		kept := make([]Tier, 0, accepted.Len())
		for i, t := range ranks {
			if !quarantined[i] {
				kept = append(kept, t)
			}
		}
		ranks = kept
		if r.logger != nil {
			r.logger.Warn(ctx, "quarantined rows with unknown status", logger.Int("rows", len(rejected)))
		}
	}

	perm := make([]int, accepted.Len())
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int { return int(ranks[a]) - int(ranks[b]) })
	res.Table = accepted.Reorder(perm)

	for _, t := range ranks {
		res.TierCounts[t]++
	}
	return res, nil
}

// tierOf reads a status cell. Missing and blank cells take the default tier.
func (r *Resolver) tierOf(v table.Value) (Tier, bool) {
	switch v.Kind() {
	case table.KindMissing:
		return Default, true
	case table.KindText:
		if strings.TrimSpace(v.Text()) == "" {
			return Default, true
		}
		return Parse(v.Text())
	default:
		return 0, false
	}
}
