package sla

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout matches the JIRA-style export format, e.g. "18/Aug/25 6:00 PM".
const TimestampLayout = "2/Jan/06 3:04 PM"

// NormalizeCompany canonicalizes a free-text company name. The display form
// trims leading/trailing whitespace and collapses internal runs to a single
// space; the key additionally case-folds. Both ticket and threshold company
// fields go through this before any join, otherwise rows drop silently.
func NormalizeCompany(raw string) (display, key string) {
	display = strings.Join(strings.Fields(raw), " ")
	key = strings.ToLower(display)
	return display, key
}

// CompanyKey returns only the join key for a raw company name.
func CompanyKey(raw string) string {
	_, key := NormalizeCompany(raw)
	return key
}

// ParseTimestamp parses the fixed export timestamp format. The field and row
// identify the offending cell when parsing fails.
func ParseTimestamp(raw, field string, row int) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("row %d: column %q: unparsable timestamp %q (want %s)", row, field, raw, TimestampLayout)
	}
	return t, nil
}
