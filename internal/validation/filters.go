package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const (
	defaultPage      = 1
	defaultLimit     = 10
	maxLimit         = 100
	searchTermMaxLen = 100
)

// sortableFields whitelists listing sort columns.
var sortableFields = map[string]struct{}{
	"createdAt": {},
	"updatedAt": {},
	"urgency":   {},
	"status":    {},
	"title":     {},
	"dueDate":   {},
}

// FilterInput carries raw query parameters. Everything arrives as a
// string off the query line.
type FilterInput struct {
	Status    *string
	Urgency   *string
	IssueType *string
	Search    *string
	DateFrom  *string
	DateTo    *string
	Page      *string
	Limit     *string
	SortBy    *string
	SortOrder *string
}

// TicketFilters is the validated, defaulted filter set.
type TicketFilters struct {
	Status    *domain.TicketStatus
	Urgency   *domain.TicketUrgency
	IssueType *domain.IssueType
	Search    *string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// FilterValidation bundles the result with usable filters.
type FilterValidation struct {
	Result
	Filters TicketFilters
}

// ValidateTicketFilters checks every filter in isolation: one invalid
// filter records an error without short-circuiting the rest, unlike
// ticket-data validation. Defaults are applied after validation so the
// sanitized filters are always usable for a listing attempt.
func ValidateTicketFilters(input FilterInput) *FilterValidation {
	out := &FilterValidation{Result: Result{Valid: true}}

	if input.Status != nil {
		if status, ok := statuses[*input.Status]; ok {
			out.Filters.Status = &status
		} else {
			out.AddErrorf("status", "status must be one of: %s", enumList(statuses))
		}
	}
	if input.Urgency != nil {
		if urgency, ok := urgencies[*input.Urgency]; ok {
			out.Filters.Urgency = &urgency
		} else {
			out.AddErrorf("urgency", "urgency must be one of: %s", enumList(urgencies))
		}
	}
	if input.IssueType != nil {
		if issueType, ok := issueTypes[*input.IssueType]; ok {
			out.Filters.IssueType = &issueType
		} else {
			out.AddErrorf("issueType", "issueType must be one of: %s", enumList(issueTypes))
		}
	}
	if input.Search != nil {
		term := StripBasic(*input.Search)
		if len([]rune(term)) > searchTermMaxLen {
			out.AddErrorf("search", "search term must be at most %d characters", searchTermMaxLen)
		} else if term != "" {
			out.Filters.Search = &term
		}
	}

	var from, to *time.Time
	if input.DateFrom != nil {
		if parsed, ok := parseFilterDate(*input.DateFrom); ok {
			from = &parsed
		} else {
			out.AddError("dateFrom", "dateFrom is not a parseable date")
		}
	}
	if input.DateTo != nil {
		if parsed, ok := parseFilterDate(*input.DateTo); ok {
			to = &parsed
		} else {
			out.AddError("dateTo", "dateTo is not a parseable date")
		}
	}
	if from != nil && to != nil && to.Before(*from) {
		out.AddError("dateTo", "dateTo must not be before dateFrom")
	} else {
		out.Filters.DateFrom = from
		out.Filters.DateTo = to
	}

	out.Filters.Page = defaultPage
	if input.Page != nil {
		if page, err := strconv.Atoi(strings.TrimSpace(*input.Page)); err != nil || page < 1 {
			out.AddError("page", "page must be a positive integer")
		} else {
			out.Filters.Page = page
		}
	}
	out.Filters.Limit = defaultLimit
	if input.Limit != nil {
		if limit, err := strconv.Atoi(strings.TrimSpace(*input.Limit)); err != nil || limit < 1 || limit > maxLimit {
			out.AddErrorf("limit", "limit must be an integer between 1 and %d", maxLimit)
		} else {
			out.Filters.Limit = limit
		}
	}

	out.Filters.SortBy = "createdAt"
	if input.SortBy != nil {
		if _, ok := sortableFields[*input.SortBy]; ok {
			out.Filters.SortBy = *input.SortBy
		} else {
			out.AddErrorf("sortBy", "sortBy must be one of the sortable fields")
		}
	}
	out.Filters.SortOrder = "desc"
	if input.SortOrder != nil {
		switch strings.ToLower(*input.SortOrder) {
		case "asc", "desc":
			out.Filters.SortOrder = strings.ToLower(*input.SortOrder)
		default:
			out.AddError("sortOrder", "sortOrder must be asc or desc")
		}
	}

	out.Valid = len(out.Errors) == 0
	return out
}

// parseFilterDate accepts RFC3339 timestamps and bare dates.
func parseFilterDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
