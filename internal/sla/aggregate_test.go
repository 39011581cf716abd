package sla

import (
	"math"
	"testing"
	"time"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

func strPtr(s string) *string { return &s }

// fixtureTicket builds an eligible, resolved severity-1 Acme ticket with the
// given elapsed minutes.
func fixtureTicket(t *testing.T, key string, elapsedMinutes int) domain.Ticket {
	created := instant(t, "18/Aug/25 6:00 PM")
	resolved := created.Add(time.Duration(elapsedMinutes) * time.Minute)
	return domain.Ticket{
		IssueKey:   key,
		Severity:   1,
		Status:     domain.StatusPermanentlyClosed,
		Created:    created,
		Resolved:   &resolved,
		Company:    "Acme",
		CompanyKey: "acme",
	}
}

func enrichAll(t *testing.T, tickets []domain.Ticket, thresholds []domain.SLAThreshold) []domain.EnrichedTicket {
	t.Helper()
	return Enrich(&domain.Snapshot{Tickets: tickets, Thresholds: thresholds})
}

func severityThreshold(severity domain.Severity, resolutionMinutes int) domain.SLAThreshold {
	return domain.SLAThreshold{
		Company: "Acme", CompanyKey: "acme", Severity: severity,
		FirstResponseMinutes: 60, ResolutionMinutes: resolutionMinutes,
	}
}

func TestAssigneeAverages_GroupsAndOmissions(t *testing.T) {
	a := fixtureTicket(t, "SUP-1", 100)
	a.Assignee = strPtr("dana")
	b := fixtureTicket(t, "SUP-2", 200)
	b.Assignee = strPtr("dana")
	c := fixtureTicket(t, "SUP-3", 50)
	c.Assignee = strPtr("lee")

	// Not eligible: must not contribute.
	open := fixtureTicket(t, "SUP-4", 10)
	open.Status = "Open"
	open.Assignee = strPtr("dana")

	// No threshold for severity 2: evaluable gate drops it.
	noThreshold := fixtureTicket(t, "SUP-5", 10)
	noThreshold.Severity = 2
	noThreshold.Assignee = strPtr("lee")

	// No assignee: skipped, not grouped under empty string.
	unassigned := fixtureTicket(t, "SUP-6", 10)

	enriched := enrichAll(t,
		[]domain.Ticket{a, b, c, open, noThreshold, unassigned},
		[]domain.SLAThreshold{severityThreshold(1, 1000)},
	)

	rows := AssigneeAverages(enriched)
	if len(rows) != 2 {
		t.Fatalf("expected 2 groups, got %d: %#v", len(rows), rows)
	}
	// Sorted mean ascending: lee (50) before dana (150).
	if rows[0].Name != "lee" || rows[0].MeanResolutionMinutes != 50 || rows[0].TicketCount != 1 {
		t.Fatalf("unexpected first row: %#v", rows[0])
	}
	if rows[1].Name != "dana" || rows[1].MeanResolutionMinutes != 150 || rows[1].TicketCount != 2 {
		t.Fatalf("unexpected second row: %#v", rows[1])
	}
}

func TestProductAverages_KeysByProduct(t *testing.T) {
	a := fixtureTicket(t, "SUP-1", 60)
	a.Product = strPtr("Widgets")
	b := fixtureTicket(t, "SUP-2", 120)
	b.Product = strPtr("Widgets")

	rows := ProductAverages(enrichAll(t,
		[]domain.Ticket{a, b},
		[]domain.SLAThreshold{severityThreshold(1, 1000)},
	))
	if len(rows) != 1 {
		t.Fatalf("expected 1 group, got %d", len(rows))
	}
	if rows[0].Name != "Widgets" || rows[0].MeanResolutionMinutes != 90 || rows[0].TicketCount != 2 {
		t.Fatalf("unexpected row: %#v", rows[0])
	}
}

func TestViolations_MembershipAndMissingDataSplit(t *testing.T) {
	breached := fixtureTicket(t, "SUP-1", 200) // budget 120 → violated

	missingResolved := fixtureTicket(t, "SUP-2", 0)
	missingResolved.Resolved = nil

	compliant := fixtureTicket(t, "SUP-3", 100)

	// Indeterminate through absent threshold only: not a violations row.
	noThreshold := fixtureTicket(t, "SUP-4", 500)
	noThreshold.Severity = 2

	rows := Violations(enrichAll(t,
		[]domain.Ticket{breached, missingResolved, compliant, noThreshold},
		[]domain.SLAThreshold{severityThreshold(1, 120)},
	))

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %#v", len(rows), rows)
	}
	// Breached row sorts first (non-nil exceed percent before nils).
	if rows[0].IssueKey != "SUP-1" {
		t.Fatalf("expected SUP-1 first, got %s", rows[0].IssueKey)
	}
	if rows[0].ResolutionPercentExceeded == nil {
		t.Fatal("breached row should carry an exceed percent")
	}
	if rows[0].MissingResolutionData {
		t.Fatal("breached row is not missing data")
	}
	if rows[1].IssueKey != "SUP-2" {
		t.Fatalf("expected SUP-2 second, got %s", rows[1].IssueKey)
	}
	if !rows[1].MissingResolutionData {
		t.Fatal("unresolved row must flag missing data")
	}
	if rows[1].ResolutionPercentExceeded != nil {
		t.Fatal("missing-data row must not carry an exceed percent")
	}
}

func TestViolations_FirstResponseOnly(t *testing.T) {
	late := fixtureTicket(t, "SUP-1", 60) // resolution fine
	late.FirstResponseTarget = instantPtr(t, "18/Aug/25 7:00 PM")
	late.FirstResponseActual = instantPtr(t, "18/Aug/25 7:30 PM")

	rows := Violations(enrichAll(t,
		[]domain.Ticket{late},
		[]domain.SLAThreshold{severityThreshold(1, 120)},
	))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].FirstResponseCompliant != domain.ComplianceNonCompliant {
		t.Fatalf("expected FR violation, got %s", rows[0].FirstResponseCompliant)
	}
	if rows[0].ResolutionCompliant != domain.ComplianceCompliant {
		t.Fatalf("resolution should stay compliant, got %s", rows[0].ResolutionCompliant)
	}
}

func TestReopenHeavy_OrderingAndStatusIndependence(t *testing.T) {
	oldFive := fixtureTicket(t, "SUP-1", 10)
	oldFive.ReopenCount = 5
	oldFive.Created = instant(t, "10/Aug/25 9:00 AM")

	newFive := fixtureTicket(t, "SUP-2", 10)
	newFive.ReopenCount = 5
	newFive.Created = instant(t, "12/Aug/25 9:00 AM")

	three := fixtureTicket(t, "SUP-3", 10)
	three.ReopenCount = 3

	// Open ticket still reported: reopen tracking ignores the status gate.
	openHeavy := fixtureTicket(t, "SUP-4", 10)
	openHeavy.ReopenCount = 2
	openHeavy.Status = "Open"

	single := fixtureTicket(t, "SUP-5", 10)
	single.ReopenCount = 1

	rows := ReopenHeavy(enrichAll(t,
		[]domain.Ticket{three, newFive, single, openHeavy, oldFive},
		[]domain.SLAThreshold{severityThreshold(1, 120)},
	))

	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.IssueKey)
	}
	want := []string{"SUP-1", "SUP-2", "SUP-3", "SUP-4"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
}

func TestSummarize_StatisticsAndSeverityBreakdown(t *testing.T) {
	// Severity 1 budget 120: elapsed 100 compliant, 200 non-compliant.
	s1a := fixtureTicket(t, "SUP-1", 100)
	s1b := fixtureTicket(t, "SUP-2", 200)
	// Severity 3 budget 120: elapsed 50 compliant.
	s3 := fixtureTicket(t, "SUP-3", 50)
	s3.Severity = 3
	// Indeterminate: counted eligible, excluded from compliance buckets.
	unresolved := fixtureTicket(t, "SUP-4", 0)
	unresolved.Resolved = nil
	// Ineligible: invisible to the summary.
	open := fixtureTicket(t, "SUP-5", 10)
	open.Status = "Open"

	summary := Summarize(enrichAll(t,
		[]domain.Ticket{s1a, s1b, s3, unresolved, open},
		[]domain.SLAThreshold{severityThreshold(1, 120), severityThreshold(3, 120)},
	))

	if summary.EligibleTickets != 4 {
		t.Fatalf("eligible: got %d, want 4", summary.EligibleTickets)
	}
	if summary.EvaluableTickets != 3 {
		t.Fatalf("evaluable: got %d, want 3", summary.EvaluableTickets)
	}
	if summary.OverallCompliancePct == nil || *summary.OverallCompliancePct != round2(2.0/3.0*100) {
		t.Fatalf("overall compliance: got %v", summary.OverallCompliancePct)
	}
	// Recomputing from the buckets must agree with the reported value.
	recomputed := float64(summary.CompliantTickets) / float64(summary.CompliantTickets+summary.NonCompliantTickets) * 100
	if math.Abs(recomputed-*summary.OverallCompliancePct) > 0.01 {
		t.Fatalf("bucket recomputation %v disagrees with reported %v", recomputed, *summary.OverallCompliancePct)
	}
	if summary.CoveragePct == nil || *summary.CoveragePct != 75 {
		t.Fatalf("coverage: got %v, want 75", summary.CoveragePct)
	}
	if summary.MedianResolutionMinutes == nil || *summary.MedianResolutionMinutes != 100 {
		t.Fatalf("median of [50 100 200]: got %v, want 100", summary.MedianResolutionMinutes)
	}
	if summary.P90ResolutionMinutes == nil || *summary.P90ResolutionMinutes != 180 {
		// position 0.9*2 = 1.8 → 100 + 0.8*(200-100) = 180
		t.Fatalf("p90: got %v, want 180", summary.P90ResolutionMinutes)
	}

	if len(summary.BySeverity) != 2 {
		t.Fatalf("expected severities 1 and 3 only, got %#v", summary.BySeverity)
	}
	if summary.BySeverity[0].Severity != 1 || summary.BySeverity[0].CompliancePct != 50 {
		t.Fatalf("severity 1: %#v", summary.BySeverity[0])
	}
	if summary.BySeverity[1].Severity != 3 || summary.BySeverity[1].CompliancePct != 100 {
		t.Fatalf("severity 3: %#v", summary.BySeverity[1])
	}
}

func TestSummarize_EmptyInput(t *testing.T) {
	summary := Summarize(nil)
	if summary.EligibleTickets != 0 || summary.EvaluableTickets != 0 {
		t.Fatalf("unexpected counts: %#v", summary)
	}
	if summary.OverallCompliancePct != nil || summary.CoveragePct != nil {
		t.Fatal("percentages must be nil for empty input")
	}
	if summary.MedianResolutionMinutes != nil || summary.P90ResolutionMinutes != nil {
		t.Fatal("statistics must be nil for empty input")
	}
	if len(summary.BySeverity) != 0 {
		t.Fatalf("severity breakdown must be empty, got %#v", summary.BySeverity)
	}
}

func TestAggregates_EmptyEnrichedSetYieldsEmptyCollections(t *testing.T) {
	if rows := AssigneeAverages(nil); len(rows) != 0 {
		t.Fatalf("assignee averages: %#v", rows)
	}
	if rows := Violations(nil); len(rows) != 0 {
		t.Fatalf("violations: %#v", rows)
	}
	if rows := ReopenHeavy(nil); len(rows) != 0 {
		t.Fatalf("reopens: %#v", rows)
	}
}
