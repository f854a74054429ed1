package service

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// SearchFilter captures caller-supplied search parameters before role
// scoping is applied.
type SearchFilter struct {
	Number       int
	Title        string
	Status       string
	Priority     string
	AssignedToMe bool
	Page         int
	PageSize     int
}

// ResolveQuery decides which query shape the ticket store runs for a caller.
//
// A non-zero number wins over everything else and ignores role scoping:
// numbers act as a direct-access key. Customers are always restricted to
// tickets they own. Technicians see the whole collection, optionally narrowed
// to tickets assigned to them.
func ResolveQuery(actor *domain.User, filter SearchFilter) repository.TicketQuery {
	query := repository.TicketQuery{
		Title:    filter.Title,
		Status:   filter.Status,
		Priority: filter.Priority,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}

	if filter.Number > 0 {
		return repository.TicketQuery{
			Number:   filter.Number,
			Page:     filter.Page,
			PageSize: filter.PageSize,
		}
	}

	switch actor.Role {
	case domain.RoleTechnician:
		if filter.AssignedToMe {
			assignee := actor.ID
			query.AssigneeID = &assignee
		}
	case domain.RoleCustomer:
		owner := actor.ID
		query.OwnerID = &owner
	default:
		// unknown roles get the narrowest scope
		owner := actor.ID
		query.OwnerID = &owner
	}
	return query
}
