package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketService is the lifecycle engine: it validates and applies state
// transitions, writes audit entries and assigns owners.
type TicketService struct {
	tickets    repository.TicketRepository
	changes    repository.StatusChangeRepository
	numbers    NumberGenerator
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo       repository.TicketRepository
	StatusChangeRepo repository.StatusChangeRepository
	Numbers          NumberGenerator
	Dispatcher       events.Dispatcher
	Clock            func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    string
}

// TicketUpdateInput describes a content edit. Status, owner, number and
// creation time are never taken from here.
type TicketUpdateInput struct {
	ID          string
	Title       string
	Description string
	Priority    string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		changes:    deps.StatusChangeRepo,
		numbers:    deps.Numbers,
		dispatcher: deps.Dispatcher,
		now:        deps.Clock,
	}
	if svc.numbers == nil {
		svc.numbers = NewRandomNumberGenerator()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// Create opens a new ticket owned by the caller, in status NEW.
func (s *TicketService) Create(ctx context.Context, callerID string, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, util.NewValidationError("title required", nil)
	}

	ticket := &domain.Ticket{
		Number:      s.numbers.Next(),
		OwnerID:     callerID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusNew,
		Priority:    strings.TrimSpace(input.Priority),
		CreatedAt:   s.now(),
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  callerID,
		Payload: events.TicketCreatedPayload{
			Number:   ticket.Number,
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Status:   ticket.Status,
		},
	})
	return ticket, nil
}

// UpdateContent edits title, description and priority. The stored status,
// owner, creation time and number always win over the input, and an assignee
// already on the ticket is never blanked out.
func (s *TicketService) UpdateContent(ctx context.Context, callerID string, input TicketUpdateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, util.NewValidationError("id required", nil)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, util.NewValidationError("title required", nil)
	}

	current, err := s.tickets.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	current.Title = strings.TrimSpace(input.Title)
	current.Description = strings.TrimSpace(input.Description)
	current.Priority = strings.TrimSpace(input.Priority)

	if err := s.tickets.Update(ctx, current); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: current.ID,
		ActorID:  callerID,
	})
	return current, nil
}

// ChangeStatus applies a lifecycle transition and records its audit entry.
// Moving to ASSIGNED claims the ticket for the acting caller. The ticket
// update and the audit append are a single transactional unit.
func (s *TicketService) ChangeStatus(ctx context.Context, callerID, ticketID, status string) (*domain.Ticket, error) {
	if strings.TrimSpace(ticketID) == "" {
		return nil, util.NewValidationError("id required", nil)
	}
	if strings.TrimSpace(status) == "" {
		return nil, util.NewValidationError("status required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	newStatus := domain.ParseStatus(status)
	ticket.Status = newStatus
	if newStatus == domain.TicketStatusAssigned {
		assignee := callerID
		ticket.AssigneeID = &assignee
	}

	change := &domain.StatusChange{
		TicketID:    ticket.ID,
		ChangedByID: callerID,
		Status:      newStatus,
		ChangedAt:   s.now(),
	}
	if err := s.tickets.ApplyStatusChange(ctx, ticket, change); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  callerID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	if newStatus == domain.TicketStatusAssigned {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			ActorID:  callerID,
			Payload:  events.TicketAssignedPayload{AssigneeID: callerID},
		})
	}
	return ticket, nil
}

// Delete removes a ticket. Audit entries stay behind for the historical
// record, but detail lookups for the id fail with not-found afterwards.
func (s *TicketService) Delete(ctx context.Context, callerID, ticketID string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.DeleteByID(ctx, ticket.ID); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		ActorID:  callerID,
		Payload:  events.TicketDeletedPayload{Number: ticket.Number},
	})
	return nil
}

// GetWithHistory fetches a ticket together with its status changes, newest
// first.
func (s *TicketService) GetWithHistory(ctx context.Context, ticketID string) (*domain.Ticket, []domain.StatusChange, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.changes.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, history, nil
}

// Search runs a role-scoped, paginated query over the ticket collection.
func (s *TicketService) Search(ctx context.Context, actor *domain.User, filter SearchFilter) ([]domain.Ticket, int, error) {
	if actor == nil {
		return nil, 0, util.NewUnauthorized("caller required")
	}
	return s.tickets.Query(ctx, ResolveQuery(actor, filter))
}

// List returns the caller's visible tickets without content filters.
func (s *TicketService) List(ctx context.Context, actor *domain.User, page, pageSize int) ([]domain.Ticket, int, error) {
	return s.Search(ctx, actor, SearchFilter{Page: page, PageSize: pageSize})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
