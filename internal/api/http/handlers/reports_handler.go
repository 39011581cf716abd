package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-analytics/internal/api/dto"
	"github.com/spec-kit/sla-analytics/internal/service"
)

// ReportsHandler serves the five aggregate report endpoints.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// AssigneeAverages GET /reports/assignee_avg.
func (h *ReportsHandler) AssigneeAverages(c *fiber.Ctx) error {
	rows, err := h.service.AssigneeAverages(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromGroupAverages(rows)})
}

// ProductAverages GET /reports/product_avg.
func (h *ReportsHandler) ProductAverages(c *fiber.Ctx) error {
	rows, err := h.service.ProductAverages(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromGroupAverages(rows)})
}

// Violations GET /reports/violations.
func (h *ReportsHandler) Violations(c *fiber.Ctx) error {
	rows, err := h.service.Violations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromViolations(rows)})
}

// Reopens GET /reports/reopens.
func (h *ReportsHandler) Reopens(c *fiber.Ctx) error {
	rows, err := h.service.ReopenHeavy(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReopenTickets(rows)})
}

// Summary GET /reports/summary.
func (h *ReportsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSummary(summary)})
}
