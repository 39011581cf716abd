package dto

import (
	"math"
	"testing"
	"time"

	"github.com/spec-kit/sla-analytics/internal/sla"
)

func TestFiniteOrNull_GuardsNonFiniteValues(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	neg := math.Inf(-1)
	ok := 42.5

	if finiteOrNull(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	if finiteOrNull(&nan) != nil {
		t.Fatal("NaN must serialize as null")
	}
	if finiteOrNull(&inf) != nil || finiteOrNull(&neg) != nil {
		t.Fatal("infinities must serialize as null")
	}
	if v := finiteOrNull(&ok); v == nil || *v != 42.5 {
		t.Fatalf("finite value must pass through, got %v", v)
	}
}

func TestFromViolations_InstantsRenderISO8601(t *testing.T) {
	created := time.Date(2025, time.August, 18, 18, 0, 0, 0, time.UTC)
	rows := FromViolations([]sla.Violation{{IssueKey: "SUP-1", Created: created}})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Created != "2025-08-18T18:00:00Z" {
		t.Fatalf("unexpected instant rendering: %q", rows[0].Created)
	}
}

func TestFromSummary_EmptyStatisticsStayNull(t *testing.T) {
	resp := FromSummary(sla.Summary{})
	if resp.OverallCompliancePct != nil || resp.CoveragePct != nil {
		t.Fatalf("percentages should be null: %#v", resp)
	}
	if resp.MedianResolutionMinutes != nil || resp.P90ResolutionMinutes != nil {
		t.Fatalf("statistics should be null: %#v", resp)
	}
	if len(resp.BySeverity) != 0 {
		t.Fatalf("severity breakdown should be empty: %#v", resp)
	}
}
