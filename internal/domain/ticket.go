package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "open"
	TicketStatusInProgress   TicketStatus = "in-progress"
	TicketStatusAwaitingUser TicketStatus = "awaiting-user"
	TicketStatusResolved     TicketStatus = "resolved"
	TicketStatusClosed       TicketStatus = "closed"
)

// TicketUrgency enumerates SLA urgency levels.
type TicketUrgency string

const (
	TicketUrgencyLow      TicketUrgency = "low"
	TicketUrgencyMedium   TicketUrgency = "medium"
	TicketUrgencyHigh     TicketUrgency = "high"
	TicketUrgencyCritical TicketUrgency = "critical"
)

// IssueType categorizes the reported problem.
type IssueType string

const (
	IssueTypeHardware IssueType = "hardware"
	IssueTypeSoftware IssueType = "software"
	IssueTypeNetwork  IssueType = "network"
	IssueTypeAccount  IssueType = "account"
	IssueTypeSecurity IssueType = "security"
	IssueTypeOther    IssueType = "other"
)

// Ticket is the aggregate for helpdesk support requests.
type Ticket struct {
	ID          string
	Title       string
	Description string
	IssueType   IssueType
	Urgency     TicketUrgency
	Status      TicketStatus
	Category    *string
	Department  *string
	Location    *string
	ContactInfo *ContactInfo
	Metadata    map[string]any
	AssignedTo  *string
	CreatedBy   string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// Comment is a message on a ticket thread. Internal comments are
// visible to technicians and admins only.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
