package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateTicketRequest payload. Status, owner and number are not accepted
// here; they change only through creation or the status endpoint.
type UpdateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// TicketResponse is the standard ticket shape.
type TicketResponse struct {
	ID          string              `json:"id"`
	Number      int                 `json:"number"`
	OwnerID     string              `json:"owner_id"`
	AssigneeID  *string             `json:"assignee_id,omitempty"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	Priority    string              `json:"priority,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// StatusChangeResponse is one audit entry, newest first in listings.
type StatusChangeResponse struct {
	ID          string              `json:"id"`
	ChangedByID string              `json:"changed_by_id"`
	Status      domain.TicketStatus `json:"status"`
	ChangedAt   time.Time           `json:"changed_at"`
}

// TicketDetailResponse provides the ticket together with its history.
type TicketDetailResponse struct {
	TicketResponse
	Changes []StatusChangeResponse `json:"changes"`
}

// TicketPageResponse wraps a paginated listing.
type TicketPageResponse struct {
	Items    []TicketResponse `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}
