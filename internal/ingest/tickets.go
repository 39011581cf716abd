package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/internal/sla"
	apperrors "github.com/spec-kit/sla-analytics/pkg/util"
)

// Verbatim column headers from the ticket CSV export.
const (
	colIssueKey    = "Issue key"
	colIssueID     = "Issue id"
	colSeverity    = "Custom field (Severity)"
	colStatus      = "Status"
	colFRTarget    = "Custom field (First Response SLA Target Date)"
	colFRActual    = "Custom field (First Response SLA Actual Date)"
	colCreated     = "Created"
	colUpdated     = "Updated"
	colResolved    = "Resolved"
	colAssignee    = "Assignee"
	colEnvironment = "Custom field (Environment)"
	colProduct     = "Custom field (Product)"
	colSummary     = "Summary"
	colCompany     = "Custom field (CRM Company)"
	colReopenCount = "Custom field (Reopen Count)"
)

var requiredTicketColumns = []string{
	colIssueKey, colSeverity, colStatus,
	colFRTarget, colFRActual,
	colCreated, colResolved, colAssignee,
	colProduct, colCompany, colReopenCount,
}

// ParseTickets decodes a ticket CSV into domain tickets. Any malformed
// required value fails the whole batch: a partially-normalized table would
// corrupt every downstream aggregate silently. Suspect-but-admissible rows
// (negative reopen count, resolved before created, duplicate issue keys)
// are clamped or deduplicated and reported as data-quality warnings.
func ParseTickets(r io.Reader) ([]domain.Ticket, []domain.DataQualityWarning, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, apperrors.NewValidationError("empty CSV: header row required", nil)
	}
	if err != nil {
		return nil, nil, apperrors.NewValidationError("unreadable CSV header", map[string]any{"cause": err.Error()})
	}

	columns := indexColumns(header)
	for _, col := range requiredTicketColumns {
		if _, ok := columns[col]; !ok {
			return nil, nil, apperrors.NewValidationError(
				fmt.Sprintf("missing required column %q", col),
				map[string]any{"column": col},
			)
		}
	}

	var (
		tickets  []domain.Ticket
		warnings []domain.DataQualityWarning
		byKey    = make(map[string]int)
	)

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, apperrors.NewValidationError(
				fmt.Sprintf("malformed CSV row %d", row),
				map[string]any{"row": row, "cause": err.Error()},
			)
		}

		ticket, rowWarnings, err := parseTicketRow(record, columns, row)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, rowWarnings...)

		// Wholesale replace keeps the last occurrence of a duplicated key.
		if prev, ok := byKey[ticket.IssueKey]; ok {
			warnings = append(warnings, domain.DataQualityWarning{
				Row:      row,
				IssueKey: ticket.IssueKey,
				Field:    colIssueKey,
				Message:  "duplicate issue key, keeping last occurrence",
			})
			tickets[prev] = ticket
			continue
		}
		byKey[ticket.IssueKey] = len(tickets)
		tickets = append(tickets, ticket)
	}

	return tickets, warnings, nil
}

func parseTicketRow(record []string, columns map[string]int, row int) (domain.Ticket, []domain.DataQualityWarning, error) {
	var warnings []domain.DataQualityWarning
	cell := func(col string) string {
		idx, ok := columns[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	optional := func(col string) *string {
		if v := cell(col); v != "" {
			return &v
		}
		return nil
	}

	issueKey := cell(colIssueKey)
	if issueKey == "" {
		return domain.Ticket{}, nil, apperrors.NewValidationError(
			fmt.Sprintf("row %d: column %q: value required", row, colIssueKey),
			map[string]any{"row": row, "column": colIssueKey},
		)
	}

	severity, err := parseSeverity(cell(colSeverity), row)
	if err != nil {
		return domain.Ticket{}, nil, err
	}

	created, err := requiredInstant(cell(colCreated), colCreated, row)
	if err != nil {
		return domain.Ticket{}, nil, err
	}
	updated, err := optionalInstant(cell(colUpdated), colUpdated, row)
	if err != nil {
		return domain.Ticket{}, nil, err
	}
	resolved, err := optionalInstant(cell(colResolved), colResolved, row)
	if err != nil {
		return domain.Ticket{}, nil, err
	}
	frTarget, err := optionalInstant(cell(colFRTarget), colFRTarget, row)
	if err != nil {
		return domain.Ticket{}, nil, err
	}
	frActual, err := optionalInstant(cell(colFRActual), colFRActual, row)
	if err != nil {
		return domain.Ticket{}, nil, err
	}

	reopen, err := parseReopenCount(cell(colReopenCount), row)
	if err != nil {
		return domain.Ticket{}, nil, err
	}
	if reopen < 0 {
		warnings = append(warnings, domain.DataQualityWarning{
			Row:      row,
			IssueKey: issueKey,
			Field:    colReopenCount,
			Message:  fmt.Sprintf("negative reopen count %d clamped to 0", reopen),
		})
		reopen = 0
	}

	if resolved != nil && resolved.Before(created) {
		warnings = append(warnings, domain.DataQualityWarning{
			Row:      row,
			IssueKey: issueKey,
			Field:    colResolved,
			Message:  "resolved before created; elapsed minutes will clamp to 0",
		})
	}

	display, key := sla.NormalizeCompany(cell(colCompany))

	return domain.Ticket{
		IssueKey:            issueKey,
		IssueID:             optional(colIssueID),
		Severity:            severity,
		Status:              cell(colStatus),
		Created:             created,
		Updated:             updated,
		Resolved:            resolved,
		FirstResponseTarget: frTarget,
		FirstResponseActual: frActual,
		Assignee:            optional(colAssignee),
		Product:             optional(colProduct),
		Environment:         optional(colEnvironment),
		Summary:             optional(colSummary),
		Company:             display,
		CompanyKey:          key,
		ReopenCount:         reopen,
	}, warnings, nil
}

// parseSeverity accepts "Severity N" as exported or a bare "N", N in 1-5.
func parseSeverity(raw string, row int) (domain.Severity, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Severity"))
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, apperrors.NewValidationError(
			fmt.Sprintf("row %d: column %q: unparsable severity %q", row, colSeverity, raw),
			map[string]any{"row": row, "column": colSeverity, "value": raw},
		)
	}
	severity := domain.Severity(n)
	if !severity.Valid() {
		return 0, apperrors.NewValidationError(
			fmt.Sprintf("row %d: column %q: severity %d outside 1-5", row, colSeverity, n),
			map[string]any{"row": row, "column": colSeverity, "value": raw},
		)
	}
	return severity, nil
}

func parseReopenCount(raw string, row int) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(
			fmt.Sprintf("row %d: column %q: unparsable reopen count %q", row, colReopenCount, raw),
			map[string]any{"row": row, "column": colReopenCount, "value": raw},
		)
	}
	return n, nil
}

func requiredInstant(raw, col string, row int) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError(
			fmt.Sprintf("row %d: column %q: value required", row, col),
			map[string]any{"row": row, "column": col},
		)
	}
	t, err := sla.ParseTimestamp(raw, col, row)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(err.Error(), map[string]any{"row": row, "column": col, "value": raw})
	}
	return t, nil
}

func optionalInstant(raw, col string, row int) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := requiredInstant(raw, col, row)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}
