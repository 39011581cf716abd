package domain

import "time"

// StatusPermanentlyClosed is the only terminal status eligible for SLA
// scoring. Tickets in any other status stay in the snapshot but are excluded
// from compliance reports.
const StatusPermanentlyClosed = "Permanently Closed"

// Severity is the ticket urgency level, 1 (most urgent) through 5.
type Severity int

const (
	SeverityMin Severity = 1
	SeverityMax Severity = 5
)

// Valid reports whether the severity falls inside the supported range.
func (s Severity) Valid() bool {
	return s >= SeverityMin && s <= SeverityMax
}

// Ticket is one support issue as ingested from the CSV export. Company holds
// the whitespace-normalized display form; CompanyKey is the case-folded join
// key matched against SLAThreshold.CompanyKey.
type Ticket struct {
	IssueKey            string
	IssueID             *string
	Severity            Severity
	Status              string
	Created             time.Time
	Updated             *time.Time
	Resolved            *time.Time
	FirstResponseTarget *time.Time
	FirstResponseActual *time.Time
	Assignee            *string
	Product             *string
	Environment         *string
	Summary             *string
	Company             string
	CompanyKey          string
	ReopenCount         int
}

// Eligible reports whether the ticket passes the terminal-status gate for
// SLA scoring.
func (t Ticket) Eligible() bool {
	return t.Status == StatusPermanentlyClosed
}

// ReopenHeavy reports whether the ticket was reopened more than once.
func (t Ticket) ReopenHeavy() bool {
	return t.ReopenCount > 1
}
