package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/pkg/util"
)

// Memory is an in-process store implementing TicketRepository,
// StatusChangeRepository and UserRepository. It backs tests and keeps the
// service usable without a database connection.
type Memory struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
	changes []domain.StatusChange
	users   map[string]domain.User
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tickets: make(map[string]domain.Ticket),
		users:   make(map[string]domain.User),
	}
}

func (m *Memory) Create(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *Memory) Update(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[ticket.ID]; !ok {
		return util.NewNotFound("ticket", map[string]any{"id": ticket.ID})
	}
	ticket.UpdatedAt = time.Now()
	m.tickets[ticket.ID] = *ticket
	return nil
}

// ApplyStatusChange persists ticket and audit entry under one lock so readers
// never observe one without the other.
func (m *Memory) ApplyStatusChange(ctx context.Context, ticket *domain.Ticket, change *domain.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[ticket.ID]; !ok {
		return util.NewNotFound("ticket", map[string]any{"id": ticket.ID})
	}
	ticket.UpdatedAt = time.Now()
	m.tickets[ticket.ID] = *ticket
	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	m.changes = append(m.changes, *change)
	return nil
}

func (m *Memory) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, util.NewNotFound("ticket", map[string]any{"id": id})
	}
	return &ticket, nil
}

func (m *Memory) DeleteByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[id]; !ok {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}
	delete(m.tickets, id)
	return nil
}

func (m *Memory) Query(ctx context.Context, query TicketQuery) ([]domain.Ticket, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := []domain.Ticket{}
	for _, ticket := range m.tickets {
		if matchesQuery(ticket, query) {
			matched = append(matched, ticket)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []domain.Ticket{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *Memory) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]domain.Ticket, 0, len(m.tickets))
	for _, ticket := range m.tickets {
		result = append(result, ticket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) Append(ctx context.Context, change *domain.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	m.changes = append(m.changes, *change)
	return nil
}

func (m *Memory) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := []domain.StatusChange{}
	for i := len(m.changes) - 1; i >= 0; i-- {
		if m.changes[i].TicketID == ticketID {
			result = append(result, m.changes[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ChangedAt.After(result[j].ChangedAt)
	})
	return result, nil
}

func (m *Memory) CreateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return util.NewConflict("email already registered", nil)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, util.NewNotFound("user", nil)
	}
	return &user, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, util.NewNotFound("user", nil)
}

// Users adapts Memory to the UserRepository interface, whose method names
// differ from the ticket store's.
func (m *Memory) Users() UserRepository {
	return memoryUsers{m}
}

type memoryUsers struct {
	store *Memory
}

func (u memoryUsers) Create(ctx context.Context, user *domain.User) error {
	return u.store.CreateUser(ctx, user)
}

func (u memoryUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return u.store.GetUserByID(ctx, id)
}

func (u memoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.store.GetUserByEmail(ctx, email)
}

func matchesQuery(ticket domain.Ticket, query TicketQuery) bool {
	if query.Number > 0 {
		return ticket.Number == query.Number
	}
	if query.OwnerID != nil && ticket.OwnerID != *query.OwnerID {
		return false
	}
	if query.AssigneeID != nil {
		if ticket.AssigneeID == nil || *ticket.AssigneeID != *query.AssigneeID {
			return false
		}
	}
	if !containsFold(ticket.Title, query.Title) {
		return false
	}
	if !containsFold(string(ticket.Status), query.Status) {
		return false
	}
	if !containsFold(ticket.Priority, query.Priority) {
		return false
	}
	return true
}

func containsFold(value, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}
