package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const hexID = "64a1f2e3d4c5b6a798081726"

func TestValidateBulkOperationHappyPath(t *testing.T) {
	out := ValidateBulkOperation(&BulkInput{
		TicketIDs: []string{hexID, "0c5b0df5-5b35-4b0a-9d1a-3f2e1d4c5b6a"},
		Action:    strPtr("resolved"),
		Notes:     strPtr("fixed in maintenance window"),
	})
	if !out.Valid {
		t.Fatalf("expected valid result, got %v", out.Errors)
	}
	if out.Sanitized.Action != domain.BulkActionResolved {
		t.Errorf("action = %s, want resolved", out.Sanitized.Action)
	}
	if len(out.Sanitized.TicketIDs) != 2 {
		t.Errorf("ticket ids = %d, want 2", len(out.Sanitized.TicketIDs))
	}
	if out.Sanitized.PerformedAt.IsZero() {
		t.Errorf("expected performedAt stamped")
	}
}

func TestValidateBulkOperationPositionalErrors(t *testing.T) {
	out := ValidateBulkOperation(&BulkInput{
		TicketIDs: []string{hexID, "not-an-id", hexID},
		Action:    strPtr("closed"),
	})
	if out.Valid {
		t.Fatalf("expected invalid result")
	}

	var messages []string
	for _, e := range out.Errors {
		messages = append(messages, e.Message)
	}
	joined := strings.Join(messages, "; ")
	if !strings.Contains(joined, "ticketIds[1]") {
		t.Errorf("expected positional error for index 1, got %s", joined)
	}
	if !strings.Contains(joined, "ticketIds[2]") {
		t.Errorf("expected duplicate error for index 2, got %s", joined)
	}
	// Valid ids are still collected so callers can report partial results.
	if len(out.Sanitized.TicketIDs) != 1 || out.Sanitized.TicketIDs[0] != hexID {
		t.Errorf("sanitized ids = %v, want the one valid id", out.Sanitized.TicketIDs)
	}
}

func TestValidateBulkOperationEmptyAndOversized(t *testing.T) {
	out := ValidateBulkOperation(&BulkInput{Action: strPtr("closed")})
	if out.Valid {
		t.Fatalf("empty id list must fail")
	}

	ids := make([]string, 101)
	for i := range ids {
		ids[i] = fmt.Sprintf("%024x", i)
	}
	out = ValidateBulkOperation(&BulkInput{TicketIDs: ids, Action: strPtr("closed")})
	if out.Valid {
		t.Fatalf("over 100 ids must fail")
	}
}

func TestValidateBulkOperationActionRules(t *testing.T) {
	out := ValidateBulkOperation(&BulkInput{TicketIDs: []string{hexID}})
	if out.Valid {
		t.Fatalf("missing action must fail")
	}

	out = ValidateBulkOperation(&BulkInput{TicketIDs: []string{hexID}, Action: strPtr("escalate")})
	if out.Valid {
		t.Fatalf("unknown action must fail")
	}

	out = ValidateBulkOperation(&BulkInput{TicketIDs: []string{hexID}, Action: strPtr("reopen")})
	if !out.Valid {
		t.Fatalf("reopen must pass, got %v", out.Errors)
	}
	if out.Sanitized.Action.Status() != domain.TicketStatusOpen {
		t.Errorf("reopen must map to open, got %s", out.Sanitized.Action.Status())
	}
}

func TestValidateBulkOperationNotes(t *testing.T) {
	long := strings.Repeat("x", 501)
	out := ValidateBulkOperation(&BulkInput{TicketIDs: []string{hexID}, Action: strPtr("closed"), Notes: &long})
	if out.Valid {
		t.Fatalf("oversized notes must fail")
	}

	evil := "'; DROP TABLE tickets; --"
	out = ValidateBulkOperation(&BulkInput{TicketIDs: []string{hexID}, Action: strPtr("closed"), Notes: &evil})
	if out.Valid || !out.Security {
		t.Fatalf("malicious notes must fail with the security flag set")
	}
}
