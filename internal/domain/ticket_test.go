package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	assert.Equal(t, TicketStatusAssigned, ParseStatus("Assigned"))
	assert.Equal(t, TicketStatusResolved, ParseStatus("resolved"))
	assert.Equal(t, TicketStatusClosed, ParseStatus("  CLOSED "))
	assert.Equal(t, TicketStatusApproved, ParseStatus("approved"))
	assert.Equal(t, TicketStatusDisapproved, ParseStatus("Disapproved"))

	// anything unrecognized lands on NEW
	assert.Equal(t, TicketStatusNew, ParseStatus("New"))
	assert.Equal(t, TicketStatusNew, ParseStatus("escalated"))
	assert.Equal(t, TicketStatusNew, ParseStatus(""))
}

func TestSummaryTally(t *testing.T) {
	var summary Summary
	summary.Add(TicketStatusNew)
	summary.Add(TicketStatusNew)
	summary.Add(TicketStatusClosed)
	summary.Add(TicketStatus("UNKNOWN")) // ignored

	assert.Equal(t, 2, summary.Count(TicketStatusNew))
	assert.Equal(t, 1, summary.Count(TicketStatusClosed))
	assert.Equal(t, 0, summary.Count(TicketStatusApproved))
	assert.Equal(t, 0, summary.Count(TicketStatus("UNKNOWN")))
}
