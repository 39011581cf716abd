package sla

import (
	"math"
	"time"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// Evaluate derives the SLA measures for one ticket against its resolved
// threshold row. It never fails: missing dates and absent thresholds degrade
// to indeterminate compliance so one bad ticket cannot sink a report.
func Evaluate(t domain.Ticket, matrix ThresholdMatrix) domain.EnrichedTicket {
	e := domain.EnrichedTicket{
		Ticket:                 t,
		FirstResponseCompliant: domain.ComplianceIndeterminate,
		ResolutionCompliant:    domain.ComplianceIndeterminate,
		ReopenHeavy:            t.ReopenHeavy(),
	}

	threshold, found := matrix.Resolve(t.CompanyKey, t.Severity)
	e.ThresholdFound = found

	evaluateFirstResponse(&e)
	evaluateResolution(&e, threshold, found)

	return e
}

// Enrich evaluates every ticket in the snapshot. The result is ephemeral and
// recomputed per report request.
func Enrich(snapshot *domain.Snapshot) []domain.EnrichedTicket {
	matrix := NewThresholdMatrix(snapshot.Thresholds)
	enriched := make([]domain.EnrichedTicket, 0, len(snapshot.Tickets))
	for _, t := range snapshot.Tickets {
		enriched = append(enriched, Evaluate(t, matrix))
	}
	return enriched
}

// evaluateFirstResponse needs no threshold row: both the target and actual
// instants come from the ticket itself. Equality at the boundary is
// compliant.
func evaluateFirstResponse(e *domain.EnrichedTicket) {
	target, actual := e.FirstResponseTarget, e.FirstResponseActual
	if target == nil || actual == nil {
		e.MissingFirstResponseData = true
		return
	}
	if !actual.After(*target) {
		e.FirstResponseCompliant = domain.ComplianceCompliant
		return
	}
	e.FirstResponseCompliant = domain.ComplianceNonCompliant

	// Overrun is measured against the created→target window, not the
	// resolution budget. A non-positive window leaves the percentage
	// indeterminate rather than fabricating a base.
	window := target.Sub(e.Created).Minutes()
	if window > 0 {
		pct := round2(actual.Sub(*target).Minutes() / window * 100)
		e.FirstResponsePercentExceeded = &pct
	}
}

func evaluateResolution(e *domain.EnrichedTicket, threshold domain.SLAThreshold, found bool) {
	if e.Resolved != nil {
		elapsed := int64(e.Resolved.Sub(e.Created) / time.Minute)
		if elapsed < 0 {
			// Data-quality condition, flagged at ingestion; clamp so
			// downstream aggregates stay non-negative.
			elapsed = 0
		}
		e.ResolutionElapsedMinutes = &elapsed
	}

	if e.Resolved == nil {
		e.MissingResolutionData = true
		return
	}
	if !found || threshold.ResolutionMinutes <= 0 {
		return
	}

	elapsed := *e.ResolutionElapsedMinutes
	budget := int64(threshold.ResolutionMinutes)
	if elapsed <= budget {
		e.ResolutionCompliant = domain.ComplianceCompliant
		return
	}
	e.ResolutionCompliant = domain.ComplianceNonCompliant
	pct := round2(float64(elapsed-budget) / float64(budget) * 100)
	e.ResolutionPercentExceeded = &pct
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
