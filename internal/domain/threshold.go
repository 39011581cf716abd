package domain

// SLAThreshold is one row of the per-company SLA matrix: the first-response
// and resolution budgets, in minutes, for a single severity. Both budgets are
// positive; rows missing either budget are skipped at ingestion.
type SLAThreshold struct {
	Company              string
	CompanyKey           string
	Severity             Severity
	FirstResponseMinutes int
	ResolutionMinutes    int
}
