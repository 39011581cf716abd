package domain

import "fmt"

// DataQualityWarning flags a suspect row that was admitted after clamping or
// correction, as opposed to a ValidationError which rejects the whole batch.
type DataQualityWarning struct {
	Row      int
	IssueKey string
	Field    string
	Message  string
}

func (w DataQualityWarning) String() string {
	if w.IssueKey != "" {
		return fmt.Sprintf("row %d (%s): %s: %s", w.Row, w.IssueKey, w.Field, w.Message)
	}
	return fmt.Sprintf("row %d: %s: %s", w.Row, w.Field, w.Message)
}
