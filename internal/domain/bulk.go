package domain

import "time"

// BulkAction enumerates the actions a bulk operation may apply.
type BulkAction string

const (
	BulkActionInProgress BulkAction = "in-progress"
	BulkActionResolved   BulkAction = "resolved"
	BulkActionClosed     BulkAction = "closed"
	BulkActionReopen     BulkAction = "reopen"
)

// Status returns the ticket status the action drives tickets into.
func (a BulkAction) Status() TicketStatus {
	switch a {
	case BulkActionInProgress:
		return TicketStatusInProgress
	case BulkActionResolved:
		return TicketStatusResolved
	case BulkActionClosed:
		return TicketStatusClosed
	case BulkActionReopen:
		return TicketStatusOpen
	}
	return ""
}

// BulkOperation is a transient command applying one action to many
// tickets. It is not persisted as an entity.
type BulkOperation struct {
	TicketIDs   []string
	Action      BulkAction
	Notes       *string
	PerformedAt time.Time
}
