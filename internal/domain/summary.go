package domain

// Summary holds per-status ticket counts across the whole collection.
// Statuses with no tickets report zero rather than being omitted.
type Summary struct {
	AmountNew         int `json:"amount_new"`
	AmountAssigned    int `json:"amount_assigned"`
	AmountResolved    int `json:"amount_resolved"`
	AmountApproved    int `json:"amount_approved"`
	AmountDisapproved int `json:"amount_disapproved"`
	AmountClosed      int `json:"amount_closed"`
}

// Add increments the counter for the given status.
func (s *Summary) Add(status TicketStatus) {
	switch status {
	case TicketStatusNew:
		s.AmountNew++
	case TicketStatusAssigned:
		s.AmountAssigned++
	case TicketStatusResolved:
		s.AmountResolved++
	case TicketStatusApproved:
		s.AmountApproved++
	case TicketStatusDisapproved:
		s.AmountDisapproved++
	case TicketStatusClosed:
		s.AmountClosed++
	}
}

// Count returns the tally for a single status.
func (s Summary) Count(status TicketStatus) int {
	switch status {
	case TicketStatusNew:
		return s.AmountNew
	case TicketStatusAssigned:
		return s.AmountAssigned
	case TicketStatusResolved:
		return s.AmountResolved
	case TicketStatusApproved:
		return s.AmountApproved
	case TicketStatusDisapproved:
		return s.AmountDisapproved
	case TicketStatusClosed:
		return s.AmountClosed
	default:
		return 0
	}
}
