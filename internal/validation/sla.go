package validation

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// slaResolutionTargets maps urgency to the maximum resolution window.
var slaResolutionTargets = map[domain.TicketUrgency]time.Duration{
	domain.TicketUrgencyLow:      72 * time.Hour,
	domain.TicketUrgencyMedium:   48 * time.Hour,
	domain.TicketUrgencyHigh:     24 * time.Hour,
	domain.TicketUrgencyCritical: 4 * time.Hour,
}

const dueDateMaxHorizon = 30 * 24 * time.Hour

// CalculateSLADueDate returns the SLA due date for an urgency relative
// to the given start time. Unrecognized urgency reports ok=false, it
// never panics.
func CalculateSLADueDate(urgency domain.TicketUrgency, start time.Time) (time.Time, bool) {
	target, ok := slaResolutionTargets[urgency]
	if !ok {
		return time.Time{}, false
	}
	return start.Add(target), true
}

// DueDateValidation carries the parsed due date alongside the result.
type DueDateValidation struct {
	Result
	DueDate *time.Time
}

// ValidateDueDate checks a requested due date against basic sanity and
// the SLA target for the urgency. An absent due date passes through.
// Dates beyond the SLA target are allowed but flagged, support staff
// may schedule past the target deliberately.
func ValidateDueDate(dueDate *string, urgency domain.TicketUrgency) *DueDateValidation {
	out := &DueDateValidation{Result: Result{Valid: true}}
	if dueDate == nil || strings.TrimSpace(*dueDate) == "" {
		return out
	}

	parsed, ok := parseFilterDate(*dueDate)
	if !ok {
		out.AddError("dueDate", "dueDate is not a parseable date")
		return out
	}

	now := time.Now().UTC()
	if parsed.Before(now) {
		out.AddError("dueDate", "dueDate must not be in the past")
		return out
	}
	if parsed.After(now.Add(dueDateMaxHorizon)) {
		out.AddWarning("dueDate is more than 30 days out")
	}
	if slaDue, ok := CalculateSLADueDate(urgency, now); ok && parsed.After(slaDue) {
		out.AddWarning("dueDate exceeds the SLA target for this urgency")
	}

	out.DueDate = &parsed
	return out
}
