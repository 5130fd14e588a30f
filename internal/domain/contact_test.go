package domain

import (
	"encoding/json"
	"testing"
)

func TestContactInfoUnmarshalString(t *testing.T) {
	var c ContactInfo
	if err := json.Unmarshal([]byte(`"call extension 4242"`), &c); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if c.IsStructured() {
		t.Fatalf("string input must populate the raw arm")
	}
	if c.Raw != "call extension 4242" {
		t.Errorf("raw = %q", c.Raw)
	}
}

func TestContactInfoUnmarshalObject(t *testing.T) {
	var c ContactInfo
	payload := `{"email":"jane@university.edu","phone":"+4912345678","name":"Jane"}`
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if !c.IsStructured() {
		t.Fatalf("object input must populate the structured arm")
	}
	if c.Structured.Email != "jane@university.edu" || c.Structured.Name != "Jane" {
		t.Errorf("structured = %+v", c.Structured)
	}
}

func TestContactInfoUnmarshalRejectsOther(t *testing.T) {
	var c ContactInfo
	if err := json.Unmarshal([]byte(`42`), &c); err == nil {
		t.Fatalf("numbers must be rejected")
	}
}

func TestContactInfoMarshalRoundTrip(t *testing.T) {
	raw := ContactInfo{Raw: "front desk"}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal raw: %v", err)
	}
	if string(data) != `"front desk"` {
		t.Errorf("raw marshal = %s", data)
	}

	structured := ContactInfo{Structured: &ContactDetails{Email: "it@university.edu"}}
	data, err = json.Marshal(structured)
	if err != nil {
		t.Fatalf("marshal structured: %v", err)
	}
	var back ContactInfo
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !back.IsStructured() || back.Structured.Email != "it@university.edu" {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestBulkActionStatus(t *testing.T) {
	cases := map[BulkAction]TicketStatus{
		BulkActionInProgress: TicketStatusInProgress,
		BulkActionResolved:   TicketStatusResolved,
		BulkActionClosed:     TicketStatusClosed,
		BulkActionReopen:     TicketStatusOpen,
	}
	for action, want := range cases {
		if got := action.Status(); got != want {
			t.Errorf("%s.Status() = %s, want %s", action, got, want)
		}
	}
	if got := BulkAction("bogus").Status(); got != "" {
		t.Errorf("unknown action must map to empty status, got %s", got)
	}
}
