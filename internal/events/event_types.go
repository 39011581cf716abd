package events

import (
	"time"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

// EventSnapshotReplaced fires after an upload atomically swapped one half of
// the snapshot pair.
const EventSnapshotReplaced EventType = "snapshot_replaced"

// Event represents a domain event emitted by services.
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Snapshot  SnapshotReplaced `json:"snapshot"`
}

// SnapshotReplaced describes the upload that produced the new snapshot half.
type SnapshotReplaced struct {
	Kind     domain.UploadKind           `json:"kind"`
	UploadID string                      `json:"upload_id"`
	RowCount int                         `json:"row_count"`
	Warnings []domain.DataQualityWarning `json:"warnings,omitempty"`
}
