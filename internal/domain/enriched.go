package domain

// Compliance is the tri-state outcome of an SLA check. Indeterminate means
// the check could not be evaluated (missing date or no threshold row) and is
// counted in neither the compliant nor the violated bucket.
type Compliance string

const (
	ComplianceCompliant     Compliance = "compliant"
	ComplianceNonCompliant  Compliance = "non_compliant"
	ComplianceIndeterminate Compliance = "indeterminate"
)

// EnrichedTicket wraps a Ticket with its derived SLA measures. It is a pure
// function of the current snapshot, recomputed per report request and never
// persisted.
type EnrichedTicket struct {
	Ticket

	// ResolutionElapsedMinutes is resolved−created in whole minutes,
	// clamped at zero; nil when the ticket is unresolved.
	ResolutionElapsedMinutes *int64

	FirstResponseCompliant Compliance
	ResolutionCompliant    Compliance

	// Percent overrun of the respective budget, rounded to two decimals.
	// Set only when the corresponding check is non-compliant and its base
	// window is known and positive.
	FirstResponsePercentExceeded *float64
	ResolutionPercentExceeded    *float64

	// Missing-data markers distinguish "cannot judge" from "violated" in
	// the violations report.
	MissingFirstResponseData bool
	MissingResolutionData    bool

	// ThresholdFound records whether the SLA matrix had a row for this
	// ticket's (company, severity).
	ThresholdFound bool

	ReopenHeavy bool
}
