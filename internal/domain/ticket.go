package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew         TicketStatus = "NEW"
	TicketStatusAssigned    TicketStatus = "ASSIGNED"
	TicketStatusResolved    TicketStatus = "RESOLVED"
	TicketStatusApproved    TicketStatus = "APPROVED"
	TicketStatusDisapproved TicketStatus = "DISAPPROVED"
	TicketStatusClosed      TicketStatus = "CLOSED"
)

// AllStatuses lists every lifecycle state in lifecycle order.
var AllStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusAssigned,
	TicketStatusResolved,
	TicketStatusApproved,
	TicketStatusDisapproved,
	TicketStatusClosed,
}

// ParseStatus normalizes a caller-supplied status string to a canonical
// lifecycle state. Unknown values fall back to NEW.
func ParseStatus(raw string) TicketStatus {
	switch TicketStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case TicketStatusAssigned:
		return TicketStatusAssigned
	case TicketStatusResolved:
		return TicketStatusResolved
	case TicketStatusApproved:
		return TicketStatusApproved
	case TicketStatusDisapproved:
		return TicketStatusDisapproved
	case TicketStatusClosed:
		return TicketStatusClosed
	default:
		return TicketStatusNew
	}
}

// Ticket is the aggregate for support requests.
//
// OwnerID, Number, Status and CreatedAt are written only at creation or by a
// lifecycle transition; content updates never touch them.
type Ticket struct {
	ID          string
	Number      int
	OwnerID     string
	AssigneeID  *string
	Title       string
	Description string
	Status      TicketStatus
	Priority    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
