package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newTicket(owner, title string, number int, createdAt time.Time) *domain.Ticket {
	ticket := &domain.Ticket{
		Number:    number,
		OwnerID:   owner,
		Title:     title,
		Status:    domain.TicketStatusNew,
		CreatedAt: createdAt,
	}
	s.Require().NoError(s.store.Create(s.ctx, ticket))
	return ticket
}

func (s *MemoryStoreSuite) TestCreateAndGet() {
	ticket := s.newTicket("c1", "broken mouse", 7, time.Now())
	s.NotEmpty(ticket.ID)

	found, err := s.store.GetByID(s.ctx, ticket.ID)
	s.Require().NoError(err)
	s.Equal("broken mouse", found.Title)

	_, err = s.store.GetByID(s.ctx, "missing")
	s.True(util.IsNotFound(err))
}

func (s *MemoryStoreSuite) TestDelete() {
	ticket := s.newTicket("c1", "obsolete", 1, time.Now())
	s.Require().NoError(s.store.DeleteByID(s.ctx, ticket.ID))

	_, err := s.store.GetByID(s.ctx, ticket.ID)
	s.True(util.IsNotFound(err))
	s.True(util.IsNotFound(s.store.DeleteByID(s.ctx, ticket.ID)))
}

func (s *MemoryStoreSuite) TestApplyStatusChangeKeepsPairTogether() {
	ticket := s.newTicket("c1", "pair check", 2, time.Now())
	ticket.Status = domain.TicketStatusResolved
	change := &domain.StatusChange{
		TicketID:    ticket.ID,
		ChangedByID: "t1",
		Status:      domain.TicketStatusResolved,
		ChangedAt:   time.Now(),
	}
	s.Require().NoError(s.store.ApplyStatusChange(s.ctx, ticket, change))
	s.NotEmpty(change.ID)

	stored, err := s.store.GetByID(s.ctx, ticket.ID)
	s.Require().NoError(err)
	s.Equal(domain.TicketStatusResolved, stored.Status)

	history, err := s.store.ListByTicket(s.ctx, ticket.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(domain.TicketStatusResolved, history[0].Status)
}

func (s *MemoryStoreSuite) TestApplyStatusChangeUnknownTicket() {
	err := s.store.ApplyStatusChange(s.ctx, &domain.Ticket{ID: "ghost"}, &domain.StatusChange{TicketID: "ghost"})
	s.True(util.IsNotFound(err))

	history, err := s.store.ListByTicket(s.ctx, "ghost")
	s.Require().NoError(err)
	s.Empty(history, "a failed transition must not leave an audit entry behind")
}

func (s *MemoryStoreSuite) TestListByTicketNewestFirst() {
	ticket := s.newTicket("c1", "ordered", 3, time.Now())
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, status := range []domain.TicketStatus{
		domain.TicketStatusAssigned,
		domain.TicketStatusResolved,
		domain.TicketStatusClosed,
	} {
		s.Require().NoError(s.store.Append(s.ctx, &domain.StatusChange{
			TicketID:    ticket.ID,
			ChangedByID: "t1",
			Status:      status,
			ChangedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	history, err := s.store.ListByTicket(s.ctx, ticket.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal(domain.TicketStatusClosed, history[0].Status)
	s.Equal(domain.TicketStatusResolved, history[1].Status)
	s.Equal(domain.TicketStatusAssigned, history[2].Status)
}

func (s *MemoryStoreSuite) TestQueryFilters() {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.newTicket("c1", "VPN unreachable", 10, base)
	urgent := s.newTicket("c2", "mail outage", 11, base.Add(time.Minute))
	urgent.Priority = "Urgent"
	s.Require().NoError(s.store.Update(s.ctx, urgent))

	owner := "c1"
	tickets, total, err := s.store.Query(s.ctx, TicketQuery{OwnerID: &owner})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(tickets, 1)
	s.Equal("VPN unreachable", tickets[0].Title)

	tickets, _, err = s.store.Query(s.ctx, TicketQuery{Title: "vpn"})
	s.Require().NoError(err)
	s.Require().Len(tickets, 1)
	s.Equal("VPN unreachable", tickets[0].Title)

	tickets, _, err = s.store.Query(s.ctx, TicketQuery{Priority: "URG"})
	s.Require().NoError(err)
	s.Require().Len(tickets, 1)
	s.Equal("mail outage", tickets[0].Title)

	tickets, total, err = s.store.Query(s.ctx, TicketQuery{Number: 11, OwnerID: &owner})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(tickets, 1)
	s.Equal(11, tickets[0].Number, "number lookup ignores other filters")
}

func (s *MemoryStoreSuite) TestQueryPagination() {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.newTicket("c1", "ticket", i+1, base.Add(time.Duration(i)*time.Minute))
	}

	tickets, total, err := s.store.Query(s.ctx, TicketQuery{Page: 2, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(5, total)
	s.Require().Len(tickets, 2)
	s.Equal(3, tickets[0].Number)
	s.Equal(2, tickets[1].Number)

	tickets, total, err = s.store.Query(s.ctx, TicketQuery{Page: 9, PageSize: 2})
	s.Require().NoError(err)
	s.Equal(5, total)
	s.Empty(tickets)
}

func (s *MemoryStoreSuite) TestUsers() {
	users := s.store.Users()
	user := &domain.User{Name: "Ana", Email: "ana@example.com", Role: domain.RoleCustomer}
	s.Require().NoError(users.Create(s.ctx, user))
	s.NotEmpty(user.ID)

	dup := &domain.User{Name: "Ana Clone", Email: "ANA@example.com", Role: domain.RoleCustomer}
	s.Require().Error(users.Create(s.ctx, dup))

	found, err := users.GetByEmail(s.ctx, "Ana@Example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, found.ID)

	_, err = users.GetByID(s.ctx, "missing")
	s.True(util.IsNotFound(err))
}
