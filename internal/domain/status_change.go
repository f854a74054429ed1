package domain

import "time"

// StatusChange is an immutable audit entry recording one status transition.
// Entries are append-only and retrieved newest first.
type StatusChange struct {
	ID          string
	TicketID    string
	ChangedByID string
	Status      TicketStatus
	ChangedAt   time.Time
}
