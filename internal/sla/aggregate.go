package sla

import (
	"sort"
	"time"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// GroupAverage is one row of the per-assignee or per-product report.
type GroupAverage struct {
	Name                  string
	MeanResolutionMinutes float64
	TicketCount           int
}

// Violation is one row of the violations report. A row appears either
// because an SLA was actually breached or because a required date was
// missing; the Missing* flags keep the two cases distinguishable.
type Violation struct {
	IssueKey                     string
	Created                      time.Time
	Assignee                     *string
	Product                      *string
	ReopenCount                  int
	FirstResponseCompliant       domain.Compliance
	FirstResponsePercentExceeded *float64
	ResolutionCompliant          domain.Compliance
	ResolutionPercentExceeded    *float64
	MissingFirstResponseData     bool
	MissingResolutionData        bool
}

// ReopenTicket is one row of the reopen-heavy report. Reopen tracking is
// independent of closure, so the terminal-status gate does not apply; the
// status is carried so operators can filter downstream.
type ReopenTicket struct {
	IssueKey    string
	Summary     *string
	Status      string
	Created     time.Time
	Assignee    *string
	Product     *string
	ReopenCount int
}

// SeverityCompliance is the per-severity slice of the summary report.
// Severities absent from the data are omitted, not shown as zero.
type SeverityCompliance struct {
	Severity      domain.Severity
	CompliancePct float64
	Evaluable     int
}

// Summary aggregates resolution compliance over the eligible ticket set.
// Nil percentage fields mean the statistic had no evaluable input.
type Summary struct {
	EligibleTickets     int
	EvaluableTickets    int
	CompliantTickets    int
	NonCompliantTickets int

	// OverallCompliancePct = compliant / (compliant + non-compliant) × 100;
	// indeterminate tickets sit in neither bucket and show up only in
	// CoveragePct = evaluable / eligible × 100.
	OverallCompliancePct *float64
	CoveragePct          *float64

	MedianResolutionMinutes *float64
	P90ResolutionMinutes    *float64

	BySeverity []SeverityCompliance
}

// AssigneeAverages groups eligible, resolution-evaluable tickets by assignee
// and reports the mean elapsed resolution minutes with the group size.
// Groups with zero evaluable tickets are omitted. Sorted by mean ascending,
// then name.
func AssigneeAverages(enriched []domain.EnrichedTicket) []GroupAverage {
	return groupAverages(enriched, func(e domain.EnrichedTicket) *string { return e.Assignee })
}

// ProductAverages is AssigneeAverages keyed by product.
func ProductAverages(enriched []domain.EnrichedTicket) []GroupAverage {
	return groupAverages(enriched, func(e domain.EnrichedTicket) *string { return e.Product })
}

func groupAverages(enriched []domain.EnrichedTicket, key func(domain.EnrichedTicket) *string) []GroupAverage {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[string]*acc)
	for _, e := range enriched {
		if !e.Eligible() || !evaluable(e.ResolutionCompliant) {
			continue
		}
		name := key(e)
		if name == nil || *name == "" {
			continue
		}
		a := groups[*name]
		if a == nil {
			a = &acc{}
			groups[*name] = a
		}
		a.sum += float64(*e.ResolutionElapsedMinutes)
		a.count++
	}

	out := make([]GroupAverage, 0, len(groups))
	for name, a := range groups {
		out = append(out, GroupAverage{
			Name:                  name,
			MeanResolutionMinutes: round2(a.sum / float64(a.count)),
			TicketCount:           a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanResolutionMinutes != out[j].MeanResolutionMinutes {
			return out[i].MeanResolutionMinutes < out[j].MeanResolutionMinutes
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Violations lists eligible tickets that breached either SLA dimension or
// are missing a date required to judge one. Sorted by resolution overrun
// descending, then first-response overrun descending (nils last in both),
// then created ascending.
func Violations(enriched []domain.EnrichedTicket) []Violation {
	out := make([]Violation, 0)
	for _, e := range enriched {
		if !e.Eligible() {
			continue
		}
		breached := e.FirstResponseCompliant == domain.ComplianceNonCompliant ||
			e.ResolutionCompliant == domain.ComplianceNonCompliant
		missing := e.MissingFirstResponseData || e.MissingResolutionData
		if !breached && !missing {
			continue
		}
		out = append(out, Violation{
			IssueKey:                     e.IssueKey,
			Created:                      e.Created,
			Assignee:                     e.Assignee,
			Product:                      e.Product,
			ReopenCount:                  e.ReopenCount,
			FirstResponseCompliant:       e.FirstResponseCompliant,
			FirstResponsePercentExceeded: e.FirstResponsePercentExceeded,
			ResolutionCompliant:          e.ResolutionCompliant,
			ResolutionPercentExceeded:    e.ResolutionPercentExceeded,
			MissingFirstResponseData:     e.MissingFirstResponseData,
			MissingResolutionData:        e.MissingResolutionData,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := compareDescNilsLast(out[i].ResolutionPercentExceeded, out[j].ResolutionPercentExceeded); c != 0 {
			return c < 0
		}
		if c := compareDescNilsLast(out[i].FirstResponsePercentExceeded, out[j].FirstResponsePercentExceeded); c != 0 {
			return c < 0
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// ReopenHeavy lists tickets reopened more than once, regardless of status.
// Sorted by reopen count descending, ties broken by created ascending for
// determinism.
func ReopenHeavy(enriched []domain.EnrichedTicket) []ReopenTicket {
	out := make([]ReopenTicket, 0)
	for _, e := range enriched {
		if !e.ReopenHeavy {
			continue
		}
		out = append(out, ReopenTicket{
			IssueKey:    e.IssueKey,
			Summary:     e.Ticket.Summary,
			Status:      e.Status,
			Created:     e.Created,
			Assignee:    e.Assignee,
			Product:     e.Product,
			ReopenCount: e.ReopenCount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReopenCount != out[j].ReopenCount {
			return out[i].ReopenCount > out[j].ReopenCount
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

// Summarize computes the dashboard statistics over eligible tickets. An
// empty or never-evaluable input yields nil statistic fields, not an error.
func Summarize(enriched []domain.EnrichedTicket) Summary {
	var s Summary
	var elapsed []float64
	type sevAcc struct{ compliant, nonCompliant int }
	bySeverity := make(map[domain.Severity]*sevAcc)

	for _, e := range enriched {
		if !e.Eligible() {
			continue
		}
		s.EligibleTickets++
		if !evaluable(e.ResolutionCompliant) {
			continue
		}
		s.EvaluableTickets++
		elapsed = append(elapsed, float64(*e.ResolutionElapsedMinutes))

		acc := bySeverity[e.Severity]
		if acc == nil {
			acc = &sevAcc{}
			bySeverity[e.Severity] = acc
		}
		if e.ResolutionCompliant == domain.ComplianceCompliant {
			s.CompliantTickets++
			acc.compliant++
		} else {
			s.NonCompliantTickets++
			acc.nonCompliant++
		}
	}

	if denom := s.CompliantTickets + s.NonCompliantTickets; denom > 0 {
		pct := round2(float64(s.CompliantTickets) / float64(denom) * 100)
		s.OverallCompliancePct = &pct
	}
	if s.EligibleTickets > 0 {
		pct := round2(float64(s.EvaluableTickets) / float64(s.EligibleTickets) * 100)
		s.CoveragePct = &pct
	}
	if v, ok := Median(elapsed); ok {
		v = round2(v)
		s.MedianResolutionMinutes = &v
	}
	if v, ok := Percentile(elapsed, 90); ok {
		v = round2(v)
		s.P90ResolutionMinutes = &v
	}

	for sev := domain.SeverityMin; sev <= domain.SeverityMax; sev++ {
		acc := bySeverity[sev]
		if acc == nil {
			continue
		}
		total := acc.compliant + acc.nonCompliant
		s.BySeverity = append(s.BySeverity, SeverityCompliance{
			Severity:      sev,
			CompliancePct: round2(float64(acc.compliant) / float64(total) * 100),
			Evaluable:     total,
		})
	}
	return s
}

func evaluable(c domain.Compliance) bool {
	return c == domain.ComplianceCompliant || c == domain.ComplianceNonCompliant
}

// compareDescNilsLast orders larger values first and nils after any value.
func compareDescNilsLast(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	default:
		return 0
	}
}
