package dto

import (
	"math"
	"time"

	"github.com/spec-kit/sla-analytics/internal/sla"
)

// GroupAverageResponse is one per-assignee or per-product row.
type GroupAverageResponse struct {
	Name                  string  `json:"name"`
	MeanResolutionMinutes float64 `json:"mean_resolution_minutes"`
	TicketCount           int     `json:"ticket_count"`
}

// ViolationResponse is one violations row. Percent fields are null unless
// the corresponding dimension was actually breached against a known base.
type ViolationResponse struct {
	IssueKey                 string   `json:"issue_key"`
	Created                  string   `json:"created"`
	Assignee                 *string  `json:"assignee"`
	Product                  *string  `json:"product"`
	ReopenCount              int      `json:"reopen_count"`
	FirstResponseCompliant   string   `json:"first_response_compliant"`
	FirstResponseExceedPct   *float64 `json:"first_response_exceed_pct"`
	ResolutionCompliant      string   `json:"resolution_compliant"`
	ResolutionExceedPct      *float64 `json:"resolution_exceed_pct"`
	MissingFirstResponseData bool     `json:"missing_first_response_data"`
	MissingResolutionData    bool     `json:"missing_resolution_data"`
}

// ReopenResponse is one reopen-heavy row.
type ReopenResponse struct {
	IssueKey    string  `json:"issue_key"`
	Summary     *string `json:"summary"`
	Status      string  `json:"status"`
	Created     string  `json:"created"`
	Assignee    *string `json:"assignee"`
	Product     *string `json:"product"`
	ReopenCount int     `json:"reopen_count"`
}

// SeverityComplianceResponse is one severity slice of the summary.
type SeverityComplianceResponse struct {
	Severity      int     `json:"severity"`
	CompliancePct float64 `json:"compliance_pct"`
	Evaluable     int     `json:"evaluable_tickets"`
}

// SummaryResponse is the dashboard record. Nil statistics serialize as null.
type SummaryResponse struct {
	EligibleTickets         int                          `json:"eligible_tickets"`
	EvaluableTickets        int                          `json:"evaluable_tickets"`
	CompliantTickets        int                          `json:"compliant_tickets"`
	NonCompliantTickets     int                          `json:"non_compliant_tickets"`
	OverallCompliancePct    *float64                     `json:"overall_compliance_pct"`
	CoveragePct             *float64                     `json:"coverage_pct"`
	MedianResolutionMinutes *float64                     `json:"median_resolution_minutes"`
	P90ResolutionMinutes    *float64                     `json:"p90_resolution_minutes"`
	BySeverity              []SeverityComplianceResponse `json:"by_severity"`
}

// FromGroupAverages maps report rows to the transport shape.
func FromGroupAverages(rows []sla.GroupAverage) []GroupAverageResponse {
	out := make([]GroupAverageResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, GroupAverageResponse{
			Name:                  r.Name,
			MeanResolutionMinutes: r.MeanResolutionMinutes,
			TicketCount:           r.TicketCount,
		})
	}
	return out
}

// FromViolations maps violation rows to the transport shape.
func FromViolations(rows []sla.Violation) []ViolationResponse {
	out := make([]ViolationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ViolationResponse{
			IssueKey:                 r.IssueKey,
			Created:                  isoInstant(r.Created),
			Assignee:                 r.Assignee,
			Product:                  r.Product,
			ReopenCount:              r.ReopenCount,
			FirstResponseCompliant:   string(r.FirstResponseCompliant),
			FirstResponseExceedPct:   finiteOrNull(r.FirstResponsePercentExceeded),
			ResolutionCompliant:      string(r.ResolutionCompliant),
			ResolutionExceedPct:      finiteOrNull(r.ResolutionPercentExceeded),
			MissingFirstResponseData: r.MissingFirstResponseData,
			MissingResolutionData:    r.MissingResolutionData,
		})
	}
	return out
}

// FromReopenTickets maps reopen-heavy rows to the transport shape.
func FromReopenTickets(rows []sla.ReopenTicket) []ReopenResponse {
	out := make([]ReopenResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReopenResponse{
			IssueKey:    r.IssueKey,
			Summary:     r.Summary,
			Status:      r.Status,
			Created:     isoInstant(r.Created),
			Assignee:    r.Assignee,
			Product:     r.Product,
			ReopenCount: r.ReopenCount,
		})
	}
	return out
}

// FromSummary maps the summary record to the transport shape.
func FromSummary(s sla.Summary) SummaryResponse {
	bySeverity := make([]SeverityComplianceResponse, 0, len(s.BySeverity))
	for _, sc := range s.BySeverity {
		bySeverity = append(bySeverity, SeverityComplianceResponse{
			Severity:      int(sc.Severity),
			CompliancePct: sc.CompliancePct,
			Evaluable:     sc.Evaluable,
		})
	}
	return SummaryResponse{
		EligibleTickets:         s.EligibleTickets,
		EvaluableTickets:        s.EvaluableTickets,
		CompliantTickets:        s.CompliantTickets,
		NonCompliantTickets:     s.NonCompliantTickets,
		OverallCompliancePct:    finiteOrNull(s.OverallCompliancePct),
		CoveragePct:             finiteOrNull(s.CoveragePct),
		MedianResolutionMinutes: finiteOrNull(s.MedianResolutionMinutes),
		P90ResolutionMinutes:    finiteOrNull(s.P90ResolutionMinutes),
		BySeverity:              bySeverity,
	}
}

func isoInstant(t time.Time) string {
	return t.Format(time.RFC3339)
}

// finiteOrNull guards the serialization contract: NaN and ±Inf must render
// as null, never as a numeric literal.
func finiteOrNull(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
