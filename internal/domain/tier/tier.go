// Package tier resolves customer account tiers for sales rows: it joins the
// customer status table onto sales, fills absent tiers and orders rows by
// tier priority.
package tier

import (
	"strings"

	"golang.org/x/text/cases"
)

// Tier is a customer status category. Lower values sort first.
type Tier uint8

// Known tiers in priority order.
const (
	Gold Tier = iota
	Silver
	Bronze
)

// Default is assigned to rows without a customer status.
const Default = Bronze

var names = [...]string{Gold: "gold", Silver: "silver", Bronze: "bronze"}

// All returns the tiers in sort order.
func All() []Tier { return []Tier{Gold, Silver, Bronze} }

func (t Tier) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

var folder = cases.Fold()

// Parse maps a status label to a tier, ignoring case and surrounding space.
func Parse(s string) (Tier, bool) {
	key := folder.String(strings.TrimSpace(s))
	for i, n := range names {
		if key == n {
			return Tier(i), true
		}
	}
	return 0, false
}
