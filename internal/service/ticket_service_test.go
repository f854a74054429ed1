package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

// Now returns a strictly increasing timestamp so ordering assertions are
// deterministic.
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type TicketServiceSuite struct {
	suite.Suite
	store      *repository.Memory
	svc        *TicketService
	dispatcher events.Dispatcher
	published  []events.Event
	ctx        context.Context
}

func (s *TicketServiceSuite) SetupTest() {
	s.store = repository.NewMemory()
	s.published = nil
	s.dispatcher = events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketUpdated,
		events.EventTicketStatusChanged,
		events.EventTicketAssigned,
		events.EventTicketDeleted,
	} {
		s.dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			s.published = append(s.published, event)
			return nil
		})
	}
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.svc = NewTicketService(TicketDependencies{
		TicketRepo:       s.store,
		StatusChangeRepo: s.store,
		Numbers:          &SequenceNumberGenerator{},
		Dispatcher:       s.dispatcher,
		Clock:            clock.Now,
	})
	s.ctx = context.Background()
}

func TestTicketServiceSuite(t *testing.T) {
	suite.Run(t, new(TicketServiceSuite))
}

func (s *TicketServiceSuite) TestCreate() {
	s.Run("new ticket starts in NEW with empty history", func() {
		ticket, err := s.svc.Create(s.ctx, "customer-1", TicketCreateInput{Title: "printer on fire"})
		s.Require().NoError(err)
		s.Equal(domain.TicketStatusNew, ticket.Status)
		s.Equal("customer-1", ticket.OwnerID)
		s.Equal(1, ticket.Number)
		s.False(ticket.CreatedAt.IsZero())
		s.Nil(ticket.AssigneeID)

		got, history, err := s.svc.GetWithHistory(s.ctx, ticket.ID)
		s.Require().NoError(err)
		s.Equal(domain.TicketStatusNew, got.Status)
		s.Empty(history)
	})

	s.Run("rejects empty title", func() {
		_, err := s.svc.Create(s.ctx, "customer-1", TicketCreateInput{Title: "   "})
		s.Require().Error(err)
		s.True(util.IsValidation(err))
	})
}

func (s *TicketServiceSuite) TestChangeStatus() {
	s.Run("each transition appends one audit entry, newest first", func() {
		ticket, err := s.svc.Create(s.ctx, "customer-1", TicketCreateInput{Title: "vpn broken"})
		s.Require().NoError(err)

		for _, status := range []string{"Assigned", "Resolved", "Closed"} {
			_, err := s.svc.ChangeStatus(s.ctx, "tech-1", ticket.ID, status)
			s.Require().NoError(err)
		}

		got, history, err := s.svc.GetWithHistory(s.ctx, ticket.ID)
		s.Require().NoError(err)
		s.Equal(domain.TicketStatusClosed, got.Status)
		s.Require().Len(history, 3)
		s.Equal(domain.TicketStatusClosed, history[0].Status)
		s.Equal(domain.TicketStatusResolved, history[1].Status)
		s.Equal(domain.TicketStatusAssigned, history[2].Status)
		for _, change := range history {
			s.Equal(ticket.ID, change.TicketID)
			s.Equal("tech-1", change.ChangedByID)
		}
	})

	s.Run("ASSIGNED claims the ticket for the caller", func() {
		ticket, err := s.svc.Create(s.ctx, "customer-1", TicketCreateInput{Title: "monitor flicker"})
		s.Require().NoError(err)

		updated, err := s.svc.ChangeStatus(s.ctx, "tech-2", ticket.ID, "assigned")
		s.Require().NoError(err)
		s.Require().NotNil(updated.AssigneeID)
		s.Equal("tech-2", *updated.AssigneeID)
	})

	s.Run("unknown status falls back to NEW", func() {
		ticket, err := s.svc.Create(s.ctx, "customer-1", TicketCreateInput{Title: "keyboard sticky"})
		s.Require().NoError(err)

		updated, err := s.svc.ChangeStatus(s.ctx, "tech-1", ticket.ID, "Escalated")
		s.Require().NoError(err)
		s.Equal(domain.TicketStatusNew, updated.Status)

		_, history, err := s.svc.GetWithHistory(s.ctx, ticket.ID)
		s.Require().NoError(err)
		s.Require().Len(history, 1)
		s.Equal(domain.TicketStatusNew, history[0].Status)
	})

	s.Run("validates input", func() {
		_, err := s.svc.ChangeStatus(s.ctx, "tech-1", "", "Resolved")
		s.True(util.IsValidation(err))

		_, err = s.svc.ChangeStatus(s.ctx, "tech-1", "some-id", "  ")
		s.True(util.IsValidation(err))
	})

	s.Run("missing ticket yields not found", func() {
		_, err := s.svc.ChangeStatus(s.ctx, "tech-1", "nope", "Resolved")
		s.True(util.IsNotFound(err))
	})
}

func (s *TicketServiceSuite) TestUpdateContent() {
	s.Run("preserves status, owner, number, createdAt and assignee", func() {
		ticket, err := s.svc.Create(s.ctx, "customer-1", TicketCreateInput{Title: "slow laptop", Priority: "low"})
		s.Require().NoError(err)
		_, err = s.svc.ChangeStatus(s.ctx, "tech-1", ticket.ID, "Assigned")
		s.Require().NoError(err)

		updated, err := s.svc.UpdateContent(s.ctx, "customer-1", TicketUpdateInput{
			ID:          ticket.ID,
			Title:       "very slow laptop",
			Description: "takes minutes to boot",
			Priority:    "high",
		})
		s.Require().NoError(err)
		s.Equal("very slow laptop", updated.Title)
		s.Equal("high", updated.Priority)
		s.Equal(domain.TicketStatusAssigned, updated.Status)
		s.Equal("customer-1", updated.OwnerID)
		s.Equal(ticket.Number, updated.Number)
		s.Equal(ticket.CreatedAt, updated.CreatedAt)
		s.Require().NotNil(updated.AssigneeID)
		s.Equal("tech-1", *updated.AssigneeID)
	})

	s.Run("missing title leaves stored ticket unchanged", func() {
		ticket, err := s.svc.Create(s.ctx, "customer-1", TicketCreateInput{Title: "original title"})
		s.Require().NoError(err)

		_, err = s.svc.UpdateContent(s.ctx, "customer-1", TicketUpdateInput{ID: ticket.ID})
		s.Require().Error(err)
		s.True(util.IsValidation(err))

		stored, _, err := s.svc.GetWithHistory(s.ctx, ticket.ID)
		s.Require().NoError(err)
		s.Equal("original title", stored.Title)
	})

	s.Run("missing id is a validation error", func() {
		_, err := s.svc.UpdateContent(s.ctx, "customer-1", TicketUpdateInput{Title: "x"})
		s.True(util.IsValidation(err))
	})

	s.Run("unknown ticket is not found", func() {
		_, err := s.svc.UpdateContent(s.ctx, "customer-1", TicketUpdateInput{ID: "nope", Title: "x"})
		s.True(util.IsNotFound(err))
	})
}

func (s *TicketServiceSuite) TestDelete() {
	s.Run("deleted ticket is gone", func() {
		ticket, err := s.svc.Create(s.ctx, "customer-1", TicketCreateInput{Title: "duplicate request"})
		s.Require().NoError(err)
		_, err = s.svc.ChangeStatus(s.ctx, "tech-1", ticket.ID, "Resolved")
		s.Require().NoError(err)

		s.Require().NoError(s.svc.Delete(s.ctx, "customer-1", ticket.ID))

		_, _, err = s.svc.GetWithHistory(s.ctx, ticket.ID)
		s.True(util.IsNotFound(err))
	})

	s.Run("unknown id is not found", func() {
		err := s.svc.Delete(s.ctx, "customer-1", "nope")
		s.True(util.IsNotFound(err))
	})
}

func (s *TicketServiceSuite) TestSearch() {
	customer := &domain.User{ID: "customer-1", Role: domain.RoleCustomer}
	other := &domain.User{ID: "customer-2", Role: domain.RoleCustomer}
	tech := &domain.User{ID: "tech-1", Role: domain.RoleTechnician}

	// each subtest starts from a clean store
	seed := func() (mine, theirs *domain.Ticket) {
		s.SetupTest()
		var err error
		mine, err = s.svc.Create(s.ctx, customer.ID, TicketCreateInput{Title: "mine"})
		s.Require().NoError(err)
		theirs, err = s.svc.Create(s.ctx, other.ID, TicketCreateInput{Title: "theirs"})
		s.Require().NoError(err)
		return mine, theirs
	}

	s.Run("customer list only contains owned tickets", func() {
		mine, _ := seed()
		tickets, total, err := s.svc.List(s.ctx, customer, 1, 20)
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Require().Len(tickets, 1)
		s.Equal(mine.ID, tickets[0].ID)
	})

	s.Run("technician list spans all owners", func() {
		seed()
		_, total, err := s.svc.List(s.ctx, tech, 1, 20)
		s.Require().NoError(err)
		s.Equal(2, total)
	})

	s.Run("assigned flag narrows a technician to claimed tickets", func() {
		mine, _ := seed()
		_, err := s.svc.ChangeStatus(s.ctx, tech.ID, mine.ID, "Assigned")
		s.Require().NoError(err)

		tickets, total, err := s.svc.Search(s.ctx, tech, SearchFilter{AssignedToMe: true})
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Require().Len(tickets, 1)
		s.Equal(mine.ID, tickets[0].ID)
	})

	s.Run("number lookup bypasses ownership scoping", func() {
		_, theirs := seed()
		tickets, total, err := s.svc.Search(s.ctx, customer, SearchFilter{Number: theirs.Number})
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Require().Len(tickets, 1)
		s.Equal(theirs.ID, tickets[0].ID)
	})

	s.Run("title filter matches case-insensitive substrings", func() {
		seed()
		tickets, _, err := s.svc.Search(s.ctx, tech, SearchFilter{Title: "THEIR"})
		s.Require().NoError(err)
		s.Require().Len(tickets, 1)
		s.Equal("theirs", tickets[0].Title)
	})

	s.Run("results order newest first and paginate", func() {
		s.SetupTest()
		for _, title := range []string{"first", "second", "third"} {
			_, err := s.svc.Create(s.ctx, customer.ID, TicketCreateInput{Title: title})
			s.Require().NoError(err)
		}
		tickets, total, err := s.svc.Search(s.ctx, customer, SearchFilter{Page: 1, PageSize: 2})
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Require().Len(tickets, 2)
		s.Equal("third", tickets[0].Title)
		s.Equal("second", tickets[1].Title)

		tickets, _, err = s.svc.Search(s.ctx, customer, SearchFilter{Page: 2, PageSize: 2})
		s.Require().NoError(err)
		s.Require().Len(tickets, 1)
		s.Equal("first", tickets[0].Title)
	})

	s.Run("nil actor is unauthorized", func() {
		_, _, err := s.svc.Search(s.ctx, nil, SearchFilter{})
		s.Require().Error(err)
	})
}

func (s *TicketServiceSuite) TestEvents() {
	ticket, err := s.svc.Create(s.ctx, "customer-1", TicketCreateInput{Title: "event check"})
	s.Require().NoError(err)
	_, err = s.svc.ChangeStatus(s.ctx, "tech-1", ticket.ID, "Assigned")
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Delete(s.ctx, "customer-1", ticket.ID))

	types := make([]events.EventType, 0, len(s.published))
	for _, event := range s.published {
		types = append(types, event.Type)
	}
	s.Equal([]events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketAssigned,
		events.EventTicketDeleted,
	}, types)
}
