package sla

import "github.com/spec-kit/sla-analytics/internal/domain"

type thresholdKey struct {
	companyKey string
	severity   domain.Severity
}

// ThresholdMatrix indexes SLA thresholds by (normalized company, severity)
// for exact-match lookup. A miss is a first-class outcome, not an error: it
// propagates into the enriched ticket as indeterminate compliance.
type ThresholdMatrix struct {
	rows map[thresholdKey]domain.SLAThreshold
}

// NewThresholdMatrix builds the lookup index. Duplicate (company, severity)
// pairs keep the last row, matching the last-write-wins upload semantics.
func NewThresholdMatrix(thresholds []domain.SLAThreshold) ThresholdMatrix {
	rows := make(map[thresholdKey]domain.SLAThreshold, len(thresholds))
	for _, t := range thresholds {
		rows[thresholdKey{t.CompanyKey, t.Severity}] = t
	}
	return ThresholdMatrix{rows: rows}
}

// Resolve looks up the threshold row for a normalized company key and
// severity. No fuzzy matching, no default severity fallback.
func (m ThresholdMatrix) Resolve(companyKey string, severity domain.Severity) (domain.SLAThreshold, bool) {
	t, ok := m.rows[thresholdKey{companyKey, severity}]
	return t, ok
}

// Len returns the number of indexed threshold rows.
func (m ThresholdMatrix) Len() int {
	return len(m.rows)
}
