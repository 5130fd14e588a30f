package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints for all authenticated roles.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, warnings, err := h.service.Create(c.Context(), principal.User, &req.TicketInput, req.DueDate)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data":     dto.NewTicketResponse(ticket),
		"warnings": warnings,
	})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	tickets, filters, err := h.service.List(c.Context(), principal.User, parseFilterQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"pagination": fiber.Map{
			"page":  filters.Page,
			"limit": filters.Limit,
		},
	})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	detail, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.TicketDetailResponse{TicketResponse: dto.NewTicketResponse(detail.Ticket)}
	resp.Comments = make([]dto.CommentResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		resp.Comments = append(resp.Comments, dto.NewCommentResponse(&detail.Comments[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Update PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.TicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, warnings, err := h.service.Update(c.Context(), principal.User, c.Params("id"), &req.TicketInput, req.DueDate)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":     dto.NewTicketResponse(ticket),
		"warnings": warnings,
	})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := &validation.CommentInput{
		Content:    req.Content,
		IsInternal: req.IsInternal,
	}
	comment, err := h.service.AddComment(c.Context(), principal.User, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// parseFilterQuery lifts raw query parameters into the filter input.
// Values stay strings; the validation layer owns parsing and defaults.
func parseFilterQuery(c *fiber.Ctx) validation.FilterInput {
	return validation.FilterInput{
		Status:    queryPtr(c, "status"),
		Urgency:   queryPtr(c, "urgency"),
		IssueType: queryPtr(c, "issueType"),
		Search:    queryPtr(c, "search"),
		DateFrom:  queryPtr(c, "dateFrom"),
		DateTo:    queryPtr(c, "dateTo"),
		Page:      queryPtr(c, "page"),
		Limit:     queryPtr(c, "limit"),
		SortBy:    queryPtr(c, "sortBy"),
		SortOrder: queryPtr(c, "sortOrder"),
	}
}

func queryPtr(c *fiber.Ctx, key string) *string {
	value := c.Query(key)
	if value == "" {
		return nil
	}
	return &value
}
