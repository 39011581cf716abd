package domain

import "time"

// UploadKind identifies which of the two tables an upload replaced.
type UploadKind string

const (
	UploadKindTickets    UploadKind = "tickets"
	UploadKindThresholds UploadKind = "sla"
)

// Snapshot is an immutable pair of the ticket table and the SLA threshold
// matrix. Uploads build a new Snapshot and swap it in atomically, so a report
// computation always sees a consistent pair. The slices must not be mutated
// after the snapshot is published.
type Snapshot struct {
	Tickets    []Ticket
	Thresholds []SLAThreshold

	TicketsUploadID      string
	ThresholdsUploadID   string
	TicketsUploadedAt    time.Time
	ThresholdsUploadedAt time.Time
}

// Ready reports whether both tables have been uploaded at least once. An
// uploaded-but-empty table still counts as ready.
func (s *Snapshot) Ready() bool {
	return s != nil && s.TicketsUploadID != "" && s.ThresholdsUploadID != ""
}
