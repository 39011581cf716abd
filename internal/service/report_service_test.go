package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/internal/events"
	"github.com/spec-kit/sla-analytics/internal/store"
	apperrors "github.com/spec-kit/sla-analytics/pkg/util"
)

func newServices() (*UploadService, *ReportService) {
	holder := store.NewHolder()
	uploads := NewUploadService(UploadDependencies{
		Snapshots:  holder,
		Repo:       store.NewSnapshotRepository(nil),
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     zap.NewNop(),
	})
	return uploads, NewReportService(holder)
}

const ticketsCSV = `Issue key,Custom field (Severity),Status,Custom field (First Response SLA Target Date),Custom field (First Response SLA Actual Date),Created,Resolved,Assignee,Custom field (Product),Custom field (CRM Company),Custom field (Reopen Count)
SUP-1,Severity 1,Permanently Closed,18/Aug/25 7:00 PM,18/Aug/25 6:30 PM,18/Aug/25 6:00 PM,18/Aug/25 8:00 PM,dana,Widgets,Acme,0
SUP-2,Severity 1,Permanently Closed,18/Aug/25 7:00 PM,18/Aug/25 9:00 PM,18/Aug/25 6:00 PM,19/Aug/25 6:00 AM,lee,Widgets,ACME,3`

const slaCSV = `CRM Company,Severity 1 First Response,Severity 1 Resolution
Acme,60,120`

func TestReports_NoDataBeforeBothUploads(t *testing.T) {
	uploads, reports := newServices()
	ctx := context.Background()

	assertNoData := func() {
		_, err := reports.Summary(ctx)
		if err == nil {
			t.Fatal("expected NO_DATA error")
		}
		var domainErr *apperrors.DomainError
		if !errors.As(err, &domainErr) || domainErr.Code != "NO_DATA" {
			t.Fatalf("expected NO_DATA, got %v", err)
		}
	}

	assertNoData()

	if _, err := uploads.UploadTickets(ctx, strings.NewReader(ticketsCSV)); err != nil {
		t.Fatalf("upload tickets: %v", err)
	}
	assertNoData()

	if _, err := uploads.UploadThresholds(ctx, strings.NewReader(slaCSV)); err != nil {
		t.Fatalf("upload sla: %v", err)
	}
	if _, err := reports.Summary(ctx); err != nil {
		t.Fatalf("both tables uploaded, summary should work: %v", err)
	}
}

func TestReports_EndToEnd(t *testing.T) {
	uploads, reports := newServices()
	ctx := context.Background()

	if _, err := uploads.UploadTickets(ctx, strings.NewReader(ticketsCSV)); err != nil {
		t.Fatalf("upload tickets: %v", err)
	}
	if _, err := uploads.UploadThresholds(ctx, strings.NewReader(slaCSV)); err != nil {
		t.Fatalf("upload sla: %v", err)
	}

	// SUP-1: 120 elapsed vs 120 budget, boundary equality is compliant.
	// SUP-2: 720 elapsed vs 120 budget, violated, 500% over.
	violations, err := reports.Violations(ctx)
	if err != nil {
		t.Fatalf("violations: %v", err)
	}
	if len(violations) != 1 || violations[0].IssueKey != "SUP-2" {
		t.Fatalf("expected only SUP-2, got %#v", violations)
	}
	if violations[0].ResolutionPercentExceeded == nil || *violations[0].ResolutionPercentExceeded != 500 {
		t.Fatalf("resolution exceed: got %v, want 500", violations[0].ResolutionPercentExceeded)
	}
	if violations[0].FirstResponseCompliant != domain.ComplianceNonCompliant {
		t.Fatalf("SUP-2 first response should be violated, got %s", violations[0].FirstResponseCompliant)
	}

	summary, err := reports.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.OverallCompliancePct == nil || *summary.OverallCompliancePct != 50 {
		t.Fatalf("overall compliance: got %v, want 50", summary.OverallCompliancePct)
	}
	if summary.CoveragePct == nil || *summary.CoveragePct != 100 {
		t.Fatalf("coverage: got %v, want 100", summary.CoveragePct)
	}

	averages, err := reports.AssigneeAverages(ctx)
	if err != nil {
		t.Fatalf("assignee averages: %v", err)
	}
	if len(averages) != 2 || averages[0].Name != "dana" || averages[0].MeanResolutionMinutes != 120 {
		t.Fatalf("unexpected averages: %#v", averages)
	}

	reopens, err := reports.ReopenHeavy(ctx)
	if err != nil {
		t.Fatalf("reopens: %v", err)
	}
	if len(reopens) != 1 || reopens[0].IssueKey != "SUP-2" || reopens[0].ReopenCount != 3 {
		t.Fatalf("unexpected reopens: %#v", reopens)
	}
}

func TestUpload_RejectedBatchLeavesSnapshotUntouched(t *testing.T) {
	uploads, reports := newServices()
	ctx := context.Background()

	if _, err := uploads.UploadTickets(ctx, strings.NewReader(ticketsCSV)); err != nil {
		t.Fatalf("upload tickets: %v", err)
	}
	if _, err := uploads.UploadThresholds(ctx, strings.NewReader(slaCSV)); err != nil {
		t.Fatalf("upload sla: %v", err)
	}

	bad := strings.ReplaceAll(ticketsCSV, "Severity 1", "Severity 9")
	if _, err := uploads.UploadTickets(ctx, strings.NewReader(bad)); err == nil {
		t.Fatal("expected validation failure")
	}

	// The previous snapshot must still serve reports.
	summary, err := reports.Summary(ctx)
	if err != nil {
		t.Fatalf("summary after rejected upload: %v", err)
	}
	if summary.EligibleTickets != 2 {
		t.Fatalf("snapshot should be the previous one, got %#v", summary)
	}
}

func TestUpload_ReplacesWholesale(t *testing.T) {
	uploads, reports := newServices()
	ctx := context.Background()

	if _, err := uploads.UploadTickets(ctx, strings.NewReader(ticketsCSV)); err != nil {
		t.Fatalf("upload tickets: %v", err)
	}
	if _, err := uploads.UploadThresholds(ctx, strings.NewReader(slaCSV)); err != nil {
		t.Fatalf("upload sla: %v", err)
	}

	replacement := `Issue key,Custom field (Severity),Status,Custom field (First Response SLA Target Date),Custom field (First Response SLA Actual Date),Created,Resolved,Assignee,Custom field (Product),Custom field (CRM Company),Custom field (Reopen Count)
SUP-9,Severity 1,Permanently Closed,,,18/Aug/25 6:00 PM,18/Aug/25 7:00 PM,kim,Widgets,Acme,0`
	result, err := uploads.UploadTickets(ctx, strings.NewReader(replacement))
	if err != nil {
		t.Fatalf("replacement upload: %v", err)
	}
	if result.RowCount != 1 {
		t.Fatalf("row count: got %d, want 1", result.RowCount)
	}
	if result.UploadedAt.IsZero() || time.Since(result.UploadedAt) < 0 {
		t.Fatalf("implausible upload time: %v", result.UploadedAt)
	}

	summary, err := reports.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.EligibleTickets != 1 {
		t.Fatalf("old tickets must not survive a replacement, got %#v", summary)
	}
}
