package handlers

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-analytics/internal/api/dto"
	"github.com/spec-kit/sla-analytics/internal/service"
	apperrors "github.com/spec-kit/sla-analytics/pkg/util"
)

// UploadHandler manages CSV upload endpoints.
type UploadHandler struct {
	service *service.UploadService
}

// NewUploadHandler constructs handler.
func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{service: uploadService}
}

// UploadTickets POST /upload/tickets.
func (h *UploadHandler) UploadTickets(c *fiber.Ctx) error {
	file, err := csvFile(c)
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := h.service.UploadTickets(c.UserContext(), file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUploadResult(result)})
}

// UploadSLA POST /upload/sla.
func (h *UploadHandler) UploadSLA(c *fiber.Ctx) error {
	file, err := csvFile(c)
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := h.service.UploadThresholds(c.UserContext(), file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUploadResult(result)})
}

func csvFile(c *fiber.Ctx) (multipart.File, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.NewValidationError("multipart field 'file' required", nil)
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		return nil, apperrors.NewValidationError("only CSV supported", map[string]any{"filename": header.Filename})
	}
	file, err := header.Open()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return file, nil
}
