package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// SnapshotRepository persists uploaded tables so the latest snapshot
// survives a restart. The engine never reads through it on the hot path;
// reports always run against the in-memory holder.
type SnapshotRepository interface {
	SaveTickets(ctx context.Context, uploadID string, uploadedAt time.Time, tickets []domain.Ticket, warningCount int) error
	SaveThresholds(ctx context.Context, uploadID string, uploadedAt time.Time, thresholds []domain.SLAThreshold, warningCount int) error
	LoadLatest(ctx context.Context) (*domain.Snapshot, error)
}

type snapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository instantiates the Postgres-backed repository. A nil
// pool yields a no-op repository so the service can run memory-only.
func NewSnapshotRepository(pool *pgxpool.Pool) SnapshotRepository {
	return &snapshotRepository{pool: pool}
}

func (r *snapshotRepository) SaveTickets(ctx context.Context, uploadID string, uploadedAt time.Time, tickets []domain.Ticket, warningCount int) error {
	if r.pool == nil {
		return nil
	}
	return r.replace(ctx, domain.UploadKindTickets, uploadID, uploadedAt, len(tickets), warningCount, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO snapshot_tickets (upload_id, issue_key, issue_id, severity, status, created_at, updated_at,
                resolved_at, fr_target_at, fr_actual_at, assignee, product, environment, summary,
                company, company_key, reopen_count)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
		for _, t := range tickets {
			if _, err := tx.Exec(ctx, query,
				uploadID, t.IssueKey, t.IssueID, int(t.Severity), t.Status, t.Created, t.Updated,
				t.Resolved, t.FirstResponseTarget, t.FirstResponseActual, t.Assignee, t.Product, t.Environment, t.Summary,
				t.Company, t.CompanyKey, t.ReopenCount,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *snapshotRepository) SaveThresholds(ctx context.Context, uploadID string, uploadedAt time.Time, thresholds []domain.SLAThreshold, warningCount int) error {
	if r.pool == nil {
		return nil
	}
	return r.replace(ctx, domain.UploadKindThresholds, uploadID, uploadedAt, len(thresholds), warningCount, func(tx pgx.Tx) error {
		const query = `
            INSERT INTO snapshot_thresholds (upload_id, company, company_key, severity, first_response_minutes, resolution_minutes)
            VALUES ($1,$2,$3,$4,$5,$6)`
		for _, t := range thresholds {
			if _, err := tx.Exec(ctx, query,
				uploadID, t.Company, t.CompanyKey, int(t.Severity), t.FirstResponseMinutes, t.ResolutionMinutes,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// replace writes the upload header, its rows, and the "latest" pointer in one
// transaction, then drops superseded uploads of the same kind. Readers that
// loaded the previous upload id keep a consistent view because row tables
// cascade from uploads and LoadLatest runs in its own transaction.
func (r *snapshotRepository) replace(ctx context.Context, kind domain.UploadKind, uploadID string, uploadedAt time.Time, rowCount, warningCount int, insertRows func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO uploads (id, kind, row_count, warning_count, uploaded_at) VALUES ($1,$2,$3,$4,$5)`,
		uploadID, string(kind), rowCount, warningCount, uploadedAt,
	); err != nil {
		return err
	}
	if err := insertRows(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO snapshot_latest (kind, upload_id) VALUES ($1,$2)
         ON CONFLICT (kind) DO UPDATE SET upload_id = EXCLUDED.upload_id`,
		string(kind), uploadID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM uploads WHERE kind=$1 AND id<>$2`,
		string(kind), uploadID,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LoadLatest rebuilds the snapshot pair from the persisted latest uploads.
// Returns nil when nothing has ever been uploaded.
func (r *snapshotRepository) LoadLatest(ctx context.Context) (*domain.Snapshot, error) {
	if r.pool == nil {
		return nil, nil
	}

	snapshot := &domain.Snapshot{}

	ticketsUpload, err := r.latestUpload(ctx, domain.UploadKindTickets)
	if err != nil {
		return nil, err
	}
	if ticketsUpload != nil {
		tickets, err := r.loadTickets(ctx, ticketsUpload.id)
		if err != nil {
			return nil, err
		}
		snapshot.Tickets = tickets
		snapshot.TicketsUploadID = ticketsUpload.id
		snapshot.TicketsUploadedAt = ticketsUpload.uploadedAt
	}

	thresholdsUpload, err := r.latestUpload(ctx, domain.UploadKindThresholds)
	if err != nil {
		return nil, err
	}
	if thresholdsUpload != nil {
		thresholds, err := r.loadThresholds(ctx, thresholdsUpload.id)
		if err != nil {
			return nil, err
		}
		snapshot.Thresholds = thresholds
		snapshot.ThresholdsUploadID = thresholdsUpload.id
		snapshot.ThresholdsUploadedAt = thresholdsUpload.uploadedAt
	}

	if snapshot.TicketsUploadID == "" && snapshot.ThresholdsUploadID == "" {
		return nil, nil
	}
	return snapshot, nil
}

type uploadHeader struct {
	id         string
	uploadedAt time.Time
}

func (r *snapshotRepository) latestUpload(ctx context.Context, kind domain.UploadKind) (*uploadHeader, error) {
	const query = `
        SELECT u.id, u.uploaded_at
        FROM snapshot_latest l JOIN uploads u ON u.id = l.upload_id
        WHERE l.kind = $1`
	var header uploadHeader
	err := r.pool.QueryRow(ctx, query, string(kind)).Scan(&header.id, &header.uploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &header, nil
}

func (r *snapshotRepository) loadTickets(ctx context.Context, uploadID string) ([]domain.Ticket, error) {
	const query = `
        SELECT issue_key, issue_id, severity, status, created_at, updated_at, resolved_at,
               fr_target_at, fr_actual_at, assignee, product, environment, summary,
               company, company_key, reopen_count
        FROM snapshot_tickets WHERE upload_id=$1`
	rows, err := r.pool.Query(ctx, query, uploadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		var t domain.Ticket
		var severity int
		if err := rows.Scan(
			&t.IssueKey, &t.IssueID, &severity, &t.Status, &t.Created, &t.Updated, &t.Resolved,
			&t.FirstResponseTarget, &t.FirstResponseActual, &t.Assignee, &t.Product, &t.Environment, &t.Summary,
			&t.Company, &t.CompanyKey, &t.ReopenCount,
		); err != nil {
			return nil, err
		}
		t.Severity = domain.Severity(severity)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *snapshotRepository) loadThresholds(ctx context.Context, uploadID string) ([]domain.SLAThreshold, error) {
	const query = `
        SELECT company, company_key, severity, first_response_minutes, resolution_minutes
        FROM snapshot_thresholds WHERE upload_id=$1`
	rows, err := r.pool.Query(ctx, query, uploadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	thresholds := make([]domain.SLAThreshold, 0)
	for rows.Next() {
		var t domain.SLAThreshold
		var severity int
		if err := rows.Scan(&t.Company, &t.CompanyKey, &severity, &t.FirstResponseMinutes, &t.ResolutionMinutes); err != nil {
			return nil, err
		}
		t.Severity = domain.Severity(severity)
		thresholds = append(thresholds, t)
	}
	return thresholds, rows.Err()
}
