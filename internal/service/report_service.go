package service

import (
	"context"

	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/internal/sla"
	"github.com/spec-kit/sla-analytics/internal/store"
	apperrors "github.com/spec-kit/sla-analytics/pkg/util"
)

// ReportService exposes the five report queries. Each is a pure computation
// over one consistent snapshot; data content never fails a report, only the
// absence of any uploaded data does.
type ReportService struct {
	snapshots *store.Holder
}

// NewReportService constructs the service.
func NewReportService(snapshots *store.Holder) *ReportService {
	return &ReportService{snapshots: snapshots}
}

// AssigneeAverages reports mean resolution minutes per assignee.
func (s *ReportService) AssigneeAverages(ctx context.Context) ([]sla.GroupAverage, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return sla.AssigneeAverages(sla.Enrich(snapshot)), nil
}

// ProductAverages reports mean resolution minutes per product.
func (s *ReportService) ProductAverages(ctx context.Context) ([]sla.GroupAverage, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return sla.ProductAverages(sla.Enrich(snapshot)), nil
}

// Violations reports SLA breaches and missing-data tickets.
func (s *ReportService) Violations(ctx context.Context) ([]sla.Violation, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return sla.Violations(sla.Enrich(snapshot)), nil
}

// ReopenHeavy reports tickets reopened more than once.
func (s *ReportService) ReopenHeavy(ctx context.Context) ([]sla.ReopenTicket, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return sla.ReopenHeavy(sla.Enrich(snapshot)), nil
}

// Summary reports the dashboard statistics.
func (s *ReportService) Summary(ctx context.Context) (sla.Summary, error) {
	snapshot, err := s.snapshot()
	if err != nil {
		return sla.Summary{}, err
	}
	return sla.Summarize(sla.Enrich(snapshot)), nil
}

func (s *ReportService) snapshot() (*domain.Snapshot, error) {
	snapshot := s.snapshots.Current()
	if !snapshot.Ready() {
		return nil, apperrors.NewNoData("upload both tickets CSV and SLA CSV first")
	}
	return snapshot, nil
}
