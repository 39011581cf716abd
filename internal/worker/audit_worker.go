package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-analytics/internal/events"
	"github.com/spec-kit/sla-analytics/internal/persistence"
)

const auditTrailKey = "sla:uploads:audit"

// UploadAuditor records completed uploads to a bounded Redis list and logs
// any data-quality warnings the batch accumulated.
type UploadAuditor struct {
	redis    *persistence.Redis
	logger   *zap.Logger
	trailLen int64
}

// StartUploadAuditor subscribes the auditor to snapshot replacement events.
func StartUploadAuditor(dispatcher events.Dispatcher, redis *persistence.Redis, logger *zap.Logger, trailLen int) {
	auditor := &UploadAuditor{redis: redis, logger: logger, trailLen: int64(trailLen)}
	dispatcher.Subscribe(events.EventSnapshotReplaced, auditor.Handle)
}

// Handle processes one snapshot replacement.
func (a *UploadAuditor) Handle(ctx context.Context, event events.Event) error {
	for _, w := range event.Snapshot.Warnings {
		a.logger.Warn("data quality warning",
			zap.String("upload_id", event.Snapshot.UploadID),
			zap.String("kind", string(event.Snapshot.Kind)),
			zap.String("warning", w.String()),
		)
	}

	a.logger.Info("snapshot replaced",
		zap.String("upload_id", event.Snapshot.UploadID),
		zap.String("kind", string(event.Snapshot.Kind)),
		zap.Int("rows", event.Snapshot.RowCount),
		zap.Int("warnings", len(event.Snapshot.Warnings)),
	)

	if !a.redis.Configured() {
		return nil
	}

	record, err := json.Marshal(map[string]any{
		"upload_id":   event.Snapshot.UploadID,
		"kind":        event.Snapshot.Kind,
		"rows":        event.Snapshot.RowCount,
		"warnings":    len(event.Snapshot.Warnings),
		"uploaded_at": event.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	pipe := a.redis.Client.Pipeline()
	pipe.LPush(ctx, auditTrailKey, record)
	if a.trailLen > 0 {
		pipe.LTrim(ctx, auditTrailKey, 0, a.trailLen-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		a.logger.Warn("failed to record upload audit entry", zap.Error(err))
	}
	return nil
}
