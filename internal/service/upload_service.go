package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/internal/events"
	"github.com/spec-kit/sla-analytics/internal/ingest"
	"github.com/spec-kit/sla-analytics/internal/store"
)

// UploadService ingests a CSV upload, persists the parsed table, and swaps
// it into the live snapshot. A ValidationError anywhere in the batch rejects
// the whole upload; the previous snapshot stays in place untouched.
type UploadService struct {
	snapshots  *store.Holder
	repo       store.SnapshotRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      func() time.Time
}

// UploadDependencies bundles collaborators for the upload service.
type UploadDependencies struct {
	Snapshots  *store.Holder
	Repo       store.SnapshotRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// UploadResult reports what an accepted upload admitted.
type UploadResult struct {
	UploadID   string
	Kind       domain.UploadKind
	RowCount   int
	UploadedAt time.Time
	Warnings   []domain.DataQualityWarning
}

// NewUploadService constructs the service.
func NewUploadService(deps UploadDependencies) *UploadService {
	return &UploadService{
		snapshots:  deps.Snapshots,
		repo:       deps.Repo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		clock:      time.Now,
	}
}

// UploadTickets replaces the ticket table wholesale.
func (s *UploadService) UploadTickets(ctx context.Context, r io.Reader) (*UploadResult, error) {
	tickets, warnings, err := ingest.ParseTickets(r)
	if err != nil {
		return nil, err
	}

	uploadID := uuid.NewString()
	uploadedAt := s.clock().UTC()

	if err := s.repo.SaveTickets(ctx, uploadID, uploadedAt, tickets, len(warnings)); err != nil {
		return nil, err
	}
	s.snapshots.ReplaceTickets(tickets, uploadID, uploadedAt)

	result := &UploadResult{
		UploadID:   uploadID,
		Kind:       domain.UploadKindTickets,
		RowCount:   len(tickets),
		UploadedAt: uploadedAt,
		Warnings:   warnings,
	}
	s.publish(ctx, result)
	return result, nil
}

// UploadThresholds replaces the SLA matrix wholesale.
func (s *UploadService) UploadThresholds(ctx context.Context, r io.Reader) (*UploadResult, error) {
	thresholds, err := ingest.ParseThresholds(r)
	if err != nil {
		return nil, err
	}

	uploadID := uuid.NewString()
	uploadedAt := s.clock().UTC()

	if err := s.repo.SaveThresholds(ctx, uploadID, uploadedAt, thresholds, 0); err != nil {
		return nil, err
	}
	s.snapshots.ReplaceThresholds(thresholds, uploadID, uploadedAt)

	result := &UploadResult{
		UploadID:   uploadID,
		Kind:       domain.UploadKindThresholds,
		RowCount:   len(thresholds),
		UploadedAt: uploadedAt,
	}
	s.publish(ctx, result)
	return result, nil
}

func (s *UploadService) publish(ctx context.Context, result *UploadResult) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSnapshotReplaced,
		Timestamp: result.UploadedAt,
		Snapshot: events.SnapshotReplaced{
			Kind:     result.Kind,
			UploadID: result.UploadID,
			RowCount: result.RowCount,
			Warnings: result.Warnings,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish snapshot event", zap.Error(err))
	}
}
