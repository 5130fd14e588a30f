package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AdminHandler exposes staff-only ticket operations. Routes are gated
// behind RequireStaff, handlers still resolve the principal for
// attribution.
type AdminHandler struct {
	service *service.TicketService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(ticketService *service.TicketService) *AdminHandler {
	return &AdminHandler{service: ticketService}
}

// Assign POST /admin/tickets/:id/assign.
func (h *AdminHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssignedTo == "" {
		return apperrors.NewValidationError("assignedTo required", nil)
	}

	ticket, err := h.service.Assign(c.Context(), principal.User, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Bulk POST /admin/tickets/bulk.
func (h *AdminHandler) Bulk(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BulkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := &validation.BulkInput{
		TicketIDs: req.TicketIDs,
		Action:    req.Action,
		Notes:     req.Notes,
	}
	result, err := h.service.Bulk(c.Context(), principal.User, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BulkResponse{
		Requested: result.Requested,
		Updated:   result.Updated,
		Status:    result.Status,
	}})
}

// Report GET /admin/reports/tickets.
func (h *AdminHandler) Report(c *fiber.Ctx) error {
	counts, err := h.service.Report(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ReportResponse{
		ByStatus:    counts.ByStatus,
		ByUrgency:   counts.ByUrgency,
		ByIssueType: counts.ByIssueType,
		Overdue:     counts.Overdue,
	}})
}
