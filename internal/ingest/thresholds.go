package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/spec-kit/sla-analytics/internal/domain"
	"github.com/spec-kit/sla-analytics/internal/sla"
	apperrors "github.com/spec-kit/sla-analytics/pkg/util"
)

const colCRMCompany = "CRM Company"

// Threshold headers look like "Severity 1 First Response" or
// "Severity 3 Resolution"; spacing and case are flexible.
var thresholdHeaderPattern = regexp.MustCompile(`(?i)^severity\s*([1-5])\s*(first\s*response|resolution)$`)

type thresholdColumn struct {
	index         int
	severity      domain.Severity
	firstResponse bool
}

// ParseThresholds decodes the SLA matrix CSV. Each company row carries up to
// five severity pairs; a severity contributes a threshold only when both its
// first-response and resolution budgets are present. Non-positive budgets
// reject the batch.
func ParseThresholds(r io.Reader) ([]domain.SLAThreshold, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewValidationError("empty CSV: header row required", nil)
	}
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable CSV header", map[string]any{"cause": err.Error()})
	}

	companyIdx := -1
	var columns []thresholdColumn
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == colCRMCompany {
			companyIdx = i
			continue
		}
		m := thresholdHeaderPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		columns = append(columns, thresholdColumn{
			index:         i,
			severity:      domain.Severity(n),
			firstResponse: strings.HasPrefix(strings.ToLower(m[2]), "first"),
		})
	}

	if companyIdx < 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("missing required column %q", colCRMCompany),
			map[string]any{"column": colCRMCompany},
		)
	}
	if len(columns) == 0 {
		return nil, apperrors.NewValidationError(
			"expected columns like 'Severity 1 First Response' and 'Severity 1 Resolution' (minutes)",
			nil,
		)
	}

	type pair struct {
		firstResponse *int
		resolution    *int
	}
	type companyRow struct {
		display string
		pairs   map[domain.Severity]*pair
	}
	// Duplicate company rows keep the last occurrence, in insertion order.
	var order []string
	byKey := make(map[string]*companyRow)

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("malformed CSV row %d", row),
				map[string]any{"row": row, "cause": err.Error()},
			)
		}

		display, key := sla.NormalizeCompany(record[companyIdx])
		if key == "" {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("row %d: column %q: value required", row, colCRMCompany),
				map[string]any{"row": row, "column": colCRMCompany},
			)
		}

		current, ok := byKey[key]
		if !ok {
			current = &companyRow{pairs: make(map[domain.Severity]*pair)}
			byKey[key] = current
			order = append(order, key)
		}
		current.display = display
		for sev := domain.SeverityMin; sev <= domain.SeverityMax; sev++ {
			delete(current.pairs, sev)
		}

		for _, col := range columns {
			if col.index >= len(record) {
				continue
			}
			raw := strings.TrimSpace(record[col.index])
			if raw == "" {
				continue
			}
			minutes, err := strconv.Atoi(raw)
			if err != nil {
				return nil, apperrors.NewValidationError(
					fmt.Sprintf("row %d: column %q: unparsable minutes %q", row, header[col.index], raw),
					map[string]any{"row": row, "column": strings.TrimSpace(header[col.index]), "value": raw},
				)
			}
			if minutes <= 0 {
				return nil, apperrors.NewValidationError(
					fmt.Sprintf("row %d: column %q: minutes must be positive, got %d", row, header[col.index], minutes),
					map[string]any{"row": row, "column": strings.TrimSpace(header[col.index]), "value": raw},
				)
			}
			p := current.pairs[col.severity]
			if p == nil {
				p = &pair{}
				current.pairs[col.severity] = p
			}
			if col.firstResponse {
				p.firstResponse = &minutes
			} else {
				p.resolution = &minutes
			}
		}
	}

	var thresholds []domain.SLAThreshold
	for _, key := range order {
		row := byKey[key]
		for sev := domain.SeverityMin; sev <= domain.SeverityMax; sev++ {
			p := row.pairs[sev]
			if p == nil || p.firstResponse == nil || p.resolution == nil {
				continue
			}
			thresholds = append(thresholds, domain.SLAThreshold{
				Company:              row.display,
				CompanyKey:           key,
				Severity:             sev,
				FirstResponseMinutes: *p.firstResponse,
				ResolutionMinutes:    *p.resolution,
			})
		}
	}
	return thresholds, nil
}
