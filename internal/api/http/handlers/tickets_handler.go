package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	summary *service.SummaryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, summaryService *service.SummaryService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, summary: summaryService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.Create(c.UserContext(), caller.ID, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Update PUT /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateContent(c.UserContext(), caller.ID, service.TicketUpdateInput{
		ID:          c.Params("id"),
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Get GET /tickets/:id — ticket detail with history, newest change first.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	if _, err := callerFromContext(c); err != nil {
		return err
	}
	ticket, history, err := h.tickets.GetWithHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetailResponse(ticket, history)})
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(c.UserContext(), caller.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangeStatus PUT /tickets/:id/status/:status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.ChangeStatus(c.UserContext(), caller.ID, c.Params("id"), c.Params("status"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// List GET /tickets — role-scoped paged listing.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	tickets, total, err := h.tickets.List(c.UserContext(), caller, page, pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": pageResponse(tickets, total, page, pageSize)})
}

// Search GET /tickets/search — role-scoped filtered search. A non-zero
// number parameter bypasses all other filters.
func (h *TicketsHandler) Search(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	filter := service.SearchFilter{
		Number:       parseInt(c.Query("number"), 0),
		Title:        c.Query("title"),
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		AssignedToMe: c.QueryBool("assigned"),
		Page:         parseInt(c.Query("page"), 1),
		PageSize:     parseInt(c.Query("page_size"), 20),
	}
	tickets, total, err := h.tickets.Search(c.UserContext(), caller, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": pageResponse(tickets, total, filter.Page, filter.PageSize)})
}

// Summary GET /tickets/summary — global count per status.
func (h *TicketsHandler) Summary(c *fiber.Ctx) error {
	if _, err := callerFromContext(c); err != nil {
		return err
	}
	summary, err := h.summary.Summarize(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

func callerFromContext(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:          ticket.ID,
		Number:      ticket.Number,
		OwnerID:     ticket.OwnerID,
		AssigneeID:  ticket.AssigneeID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

func ticketDetailResponse(ticket *domain.Ticket, history []domain.StatusChange) dto.TicketDetailResponse {
	changes := make([]dto.StatusChangeResponse, 0, len(history))
	for _, change := range history {
		changes = append(changes, dto.StatusChangeResponse{
			ID:          change.ID,
			ChangedByID: change.ChangedByID,
			Status:      change.Status,
			ChangedAt:   change.ChangedAt,
		})
	}
	return dto.TicketDetailResponse{
		TicketResponse: ticketResponse(ticket),
		Changes:        changes,
	}
}

func pageResponse(tickets []domain.Ticket, total, page, pageSize int) dto.TicketPageResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return dto.TicketPageResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
