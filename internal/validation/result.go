package validation

import "fmt"

// FieldError ties a validation message to the offending field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result accumulates the outcome of a validation pass. Validators
// append to a caller-owned Result; there is no shared global state.
// Security marks that at least one error came from malicious-content
// detection rather than an ordinary rule, so callers can log and
// count those separately.
type Result struct {
	Valid    bool
	Security bool
	Errors   []FieldError
	Warnings []string
}

// NewResult returns a passing result to accumulate into.
func NewResult() *Result {
	return &Result{Valid: true}
}

// AddError records a field error and marks the result invalid.
func (r *Result) AddError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// AddErrorf records a formatted field error.
func (r *Result) AddErrorf(field, format string, args ...any) {
	r.AddError(field, fmt.Sprintf(format, args...))
}

// AddSecurityError records a malicious-content rejection. It
// propagates exactly like a field error but flags the result.
func (r *Result) AddSecurityError(field, message string) {
	r.Security = true
	r.AddError(field, message)
}

// AddWarning records a non-fatal advisory.
func (r *Result) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// Merge folds another result into this one.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	if !other.Valid {
		r.Valid = false
	}
	if other.Security {
		r.Security = true
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// ErrorDetails renders errors as a details map for DomainError payloads.
func (r *Result) ErrorDetails() map[string]any {
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		return nil
	}
	details := map[string]any{}
	if len(r.Errors) > 0 {
		details["errors"] = r.Errors
	}
	if len(r.Warnings) > 0 {
		details["warnings"] = r.Warnings
	}
	return details
}
