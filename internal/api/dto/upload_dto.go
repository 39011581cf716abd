package dto

import (
	"time"

	"github.com/spec-kit/sla-analytics/internal/service"
)

// WarningResponse surfaces one data-quality warning from an accepted upload.
type WarningResponse struct {
	Row      int    `json:"row"`
	IssueKey string `json:"issue_key,omitempty"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// UploadResponse reports an accepted upload.
type UploadResponse struct {
	UploadID   string            `json:"upload_id"`
	Kind       string            `json:"kind"`
	RowCount   int               `json:"row_count"`
	UploadedAt string            `json:"uploaded_at"`
	Warnings   []WarningResponse `json:"warnings"`
}

// FromUploadResult maps the service result to the transport shape.
func FromUploadResult(result *service.UploadResult) UploadResponse {
	warnings := make([]WarningResponse, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, WarningResponse{
			Row:      w.Row,
			IssueKey: w.IssueKey,
			Field:    w.Field,
			Message:  w.Message,
		})
	}
	return UploadResponse{
		UploadID:   result.UploadID,
		Kind:       string(result.Kind),
		RowCount:   result.RowCount,
		UploadedAt: result.UploadedAt.Format(time.RFC3339),
		Warnings:   warnings,
	}
}
