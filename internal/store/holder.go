package store

import (
	"sync/atomic"
	"time"

	"github.com/spec-kit/sla-analytics/internal/domain"
)

// Holder keeps the current snapshot behind an atomic pointer. Uploads build
// a new snapshot and swap it in whole, so a report request running
// concurrently with an upload sees either the old pair or the new pair,
// never a torn mix.
type Holder struct {
	current atomic.Pointer[domain.Snapshot]
}

// NewHolder starts with an empty, not-ready snapshot.
func NewHolder() *Holder {
	h := &Holder{}
	h.current.Store(&domain.Snapshot{})
	return h
}

// Current returns the snapshot to compute a report against. Callers must
// treat it as immutable.
func (h *Holder) Current() *domain.Snapshot {
	return h.current.Load()
}

// Restore installs a previously persisted snapshot, typically at boot.
func (h *Holder) Restore(snapshot *domain.Snapshot) {
	if snapshot == nil {
		return
	}
	h.current.Store(snapshot)
}

// ReplaceTickets publishes a snapshot with a new ticket table, carrying the
// threshold half over from the current snapshot. The CAS loop keeps a
// concurrent threshold upload from being lost.
func (h *Holder) ReplaceTickets(tickets []domain.Ticket, uploadID string, uploadedAt time.Time) *domain.Snapshot {
	for {
		current := h.current.Load()
		next := *current
		next.Tickets = tickets
		next.TicketsUploadID = uploadID
		next.TicketsUploadedAt = uploadedAt
		if h.current.CompareAndSwap(current, &next) {
			return &next
		}
	}
}

// ReplaceThresholds is ReplaceTickets for the SLA matrix half.
func (h *Holder) ReplaceThresholds(thresholds []domain.SLAThreshold, uploadID string, uploadedAt time.Time) *domain.Snapshot {
	for {
		current := h.current.Load()
		next := *current
		next.Thresholds = thresholds
		next.ThresholdsUploadID = uploadID
		next.ThresholdsUploadedAt = uploadedAt
		if h.current.CompareAndSwap(current, &next) {
			return &next
		}
	}
}
