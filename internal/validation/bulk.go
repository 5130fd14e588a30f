package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const (
	bulkMaxTickets  = 100
	bulkNotesMaxLen = 500
)

var bulkActions = map[string]domain.BulkAction{
	"in-progress": domain.BulkActionInProgress,
	"resolved":    domain.BulkActionResolved,
	"closed":      domain.BulkActionClosed,
	"reopen":      domain.BulkActionReopen,
}

// BulkInput is the raw bulk-operation payload.
type BulkInput struct {
	TicketIDs []string `json:"ticketIds"`
	Action    *string  `json:"action"`
	Notes     *string  `json:"notes"`
}

// BulkValidation bundles the result with the sanitized operation.
// Invalid ticket ids produce per-position errors while the valid ids
// are still collected, so callers can report partial failures.
type BulkValidation struct {
	Result
	Sanitized domain.BulkOperation
}

// ValidateBulkOperation checks a bulk status-change command.
func ValidateBulkOperation(input *BulkInput) *BulkValidation {
	out := &BulkValidation{Result: Result{Valid: true}}
	if input == nil {
		out.AddError("", "bulk operation payload must be an object")
		return out
	}

	switch {
	case len(input.TicketIDs) == 0:
		out.AddError("ticketIds", "ticketIds must be a non-empty array")
	case len(input.TicketIDs) > bulkMaxTickets:
		out.AddErrorf("ticketIds", "at most %d tickets may be updated at once", bulkMaxTickets)
	}

	seen := make(map[string]struct{}, len(input.TicketIDs))
	for i, id := range input.TicketIDs {
		if !IsValidTicketID(id) {
			out.AddErrorf("ticketIds", "ticketIds[%d] is not a valid ticket id", i)
			continue
		}
		if _, dup := seen[id]; dup {
			out.AddErrorf("ticketIds", "ticketIds[%d] is a duplicate", i)
			continue
		}
		seen[id] = struct{}{}
		out.Sanitized.TicketIDs = append(out.Sanitized.TicketIDs, id)
	}

	if isBlank(input.Action) {
		out.AddError("action", "action is required")
	} else if action, ok := bulkActions[*input.Action]; ok {
		out.Sanitized.Action = action
	} else {
		out.AddErrorf("action", "action must be one of: %s", enumList(bulkActions))
	}

	if input.Notes != nil {
		notes := strings.TrimSpace(*input.Notes)
		if utf8.RuneCountInString(notes) > bulkNotesMaxLen {
			out.AddErrorf("notes", "notes must be at most %d characters", bulkNotesMaxLen)
		} else if ContainsMaliciousContent(notes) {
			out.AddSecurityError("notes", "notes contain disallowed content")
		} else if notes != "" {
			out.Sanitized.Notes = &notes
		}
	}

	out.Sanitized.PerformedAt = time.Now().UTC()
	return out
}
