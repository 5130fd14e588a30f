package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const (
	titleMinLen         = 5
	titleMaxLen         = 200
	descriptionMinLen   = 10
	descriptionMaxLen   = 5000
	descriptionMinWords = 5

	categoryMaxLen   = 100
	departmentMaxLen = 100
	locationMaxLen   = 200
	contactRawMaxLen = 100

	maxAttachments      = 10
	maxAttachmentBytes  = 10 << 20
	metadataMaxBytes    = 5 << 10
	metadataValueMaxLen = 1000
)

var issueTypes = map[string]domain.IssueType{
	"hardware": domain.IssueTypeHardware,
	"software": domain.IssueTypeSoftware,
	"network":  domain.IssueTypeNetwork,
	"account":  domain.IssueTypeAccount,
	"security": domain.IssueTypeSecurity,
	"other":    domain.IssueTypeOther,
}

var urgencies = map[string]domain.TicketUrgency{
	"low":      domain.TicketUrgencyLow,
	"medium":   domain.TicketUrgencyMedium,
	"high":     domain.TicketUrgencyHigh,
	"critical": domain.TicketUrgencyCritical,
}

var statuses = map[string]domain.TicketStatus{
	"open":          domain.TicketStatusOpen,
	"in-progress":   domain.TicketStatusInProgress,
	"awaiting-user": domain.TicketStatusAwaitingUser,
	"resolved":      domain.TicketStatusResolved,
	"closed":        domain.TicketStatusClosed,
}

// KnownDepartments backs the soft department check. Unknown values
// produce a warning, never an error, because the list drifts.
var KnownDepartments = []string{
	"Computer Science",
	"Engineering",
	"Mathematics",
	"Physics",
	"Chemistry",
	"Biology",
	"Medicine",
	"Law",
	"Business",
	"Economics",
	"Arts",
	"Humanities",
	"Library",
	"Administration",
	"Facilities",
	"Student Services",
	"IT Services",
}

// AllowedAttachmentMimeTypes is the attachment MIME allow-list.
var AllowedAttachmentMimeTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"image/webp":      {},
	"application/pdf": {},
	"text/plain":      {},
	"text/csv":        {},
	"application/zip": {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       {},
}

// metadataReservedKeys cannot be set through ticket payloads.
var metadataReservedKeys = map[string]struct{}{
	"_id":       {},
	"createdAt": {},
	"updatedAt": {},
	"__v":       {},
}

var (
	objectIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)
	uuidV4Pattern   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)
)

// AttachmentInput describes one uploaded attachment reference.
type AttachmentInput struct {
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"size"`
}

// Each validator below is a no-op when the value is absent. Required
// presence is enforced once by ValidateTicketData, not per field.

// ValidateTitle enforces length bounds and the malicious-content check.
func ValidateTitle(title *string, res *Result) {
	if title == nil {
		return
	}
	trimmed := strings.TrimSpace(*title)
	length := utf8.RuneCountInString(trimmed)
	if length < titleMinLen {
		res.AddErrorf("title", "title must be at least %d characters", titleMinLen)
	} else if length > titleMaxLen {
		res.AddErrorf("title", "title must be at most %d characters", titleMaxLen)
	}
	if ContainsMaliciousContent(trimmed) {
		res.AddSecurityError("title", "title contains disallowed content")
	}
}

// ValidateDescription enforces length bounds, the malicious-content
// check, and a soft minimum word count.
func ValidateDescription(description *string, res *Result) {
	if description == nil {
		return
	}
	trimmed := strings.TrimSpace(*description)
	length := utf8.RuneCountInString(trimmed)
	if length < descriptionMinLen {
		res.AddErrorf("description", "description must be at least %d characters", descriptionMinLen)
	} else if length > descriptionMaxLen {
		res.AddErrorf("description", "description must be at most %d characters", descriptionMaxLen)
	}
	if ContainsMaliciousContent(trimmed) {
		res.AddSecurityError("description", "description contains disallowed content")
	}
	if len(strings.Fields(trimmed)) < descriptionMinWords {
		res.AddWarning("description is very short; more detail speeds up resolution")
	}
}

// ValidateIssueType checks membership in the issue type enum.
func ValidateIssueType(issueType *string, res *Result) {
	if issueType == nil {
		return
	}
	if _, ok := issueTypes[*issueType]; !ok {
		res.AddErrorf("issueType", "issueType must be one of: %s", enumList(issueTypes))
	}
}

// ValidateUrgency checks the urgency enum and flags critical requests.
func ValidateUrgency(urgency *string, res *Result) {
	if urgency == nil {
		return
	}
	level, ok := urgencies[*urgency]
	if !ok {
		res.AddErrorf("urgency", "urgency must be one of: %s", enumList(urgencies))
		return
	}
	if level == domain.TicketUrgencyCritical {
		res.AddWarning("critical urgency requires supervisor approval")
	}
}

// ValidateStatus checks the status enum. Setting a ticket back to open
// on update is allowed but flagged, reopening needs authorization.
func ValidateStatus(status *string, isUpdate bool, res *Result) {
	if status == nil {
		return
	}
	value, ok := statuses[*status]
	if !ok {
		res.AddErrorf("status", "status must be one of: %s", enumList(statuses))
		return
	}
	if isUpdate && value == domain.TicketStatusOpen {
		res.AddWarning("reopening a ticket requires authorization")
	}
}

// ValidateCategory bounds the optional category field.
func ValidateCategory(category *string, res *Result) {
	if category == nil {
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(*category)) > categoryMaxLen {
		res.AddErrorf("category", "category must be at most %d characters", categoryMaxLen)
	}
}

// ValidateDepartment bounds the field and soft-checks the known list.
func ValidateDepartment(department *string, res *Result) {
	if department == nil {
		return
	}
	trimmed := strings.TrimSpace(*department)
	if utf8.RuneCountInString(trimmed) > departmentMaxLen {
		res.AddErrorf("department", "department must be at most %d characters", departmentMaxLen)
		return
	}
	for _, known := range KnownDepartments {
		if strings.EqualFold(known, trimmed) {
			return
		}
	}
	res.AddWarning("department is not in the known department list")
}

// ValidateLocation bounds the optional location field.
func ValidateLocation(location *string, res *Result) {
	if location == nil {
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(*location)) > locationMaxLen {
		res.AddErrorf("location", "location must be at most %d characters", locationMaxLen)
	}
}

// ValidateContactInfo validates either arm of the contact union.
func ValidateContactInfo(contact *domain.ContactInfo, res *Result) {
	if contact == nil {
		return
	}
	if contact.Structured == nil {
		raw := strings.TrimSpace(contact.Raw)
		if utf8.RuneCountInString(raw) > contactRawMaxLen {
			res.AddErrorf("contactInfo", "contact info must be at most %d characters", contactRawMaxLen)
		}
		if strings.Contains(raw, "@") && !IsValidEmail(raw) {
			res.AddWarning("contact info looks like an email but is not a valid address")
		}
		return
	}

	details := contact.Structured
	if details.Email != "" && !IsValidEmail(strings.TrimSpace(details.Email)) {
		res.AddError("contactInfo.email", "contact email is not a valid address")
	}
	if details.Phone != "" && !IsLooselyValidPhone(details.Phone) {
		res.AddWarning("contact phone does not look like a valid phone number")
	}
}

// ValidateAttachments bounds count, per-file size, MIME type, and
// filename safety.
func ValidateAttachments(attachments []AttachmentInput, res *Result) {
	if len(attachments) == 0 {
		return
	}
	if len(attachments) > maxAttachments {
		res.AddErrorf("attachments", "at most %d attachments are allowed", maxAttachments)
	}
	for i, att := range attachments {
		if att.SizeBytes > maxAttachmentBytes {
			res.AddErrorf("attachments", "attachment %q exceeds the 10MB size limit", att.FileName)
		}
		if _, ok := AllowedAttachmentMimeTypes[strings.ToLower(att.MimeType)]; !ok {
			res.AddErrorf("attachments", "attachment %q has a disallowed file type %q", att.FileName, att.MimeType)
		}
		if ContainsMaliciousContent(att.FileName) {
			res.AddSecurityError("attachments", fmt.Sprintf("attachment filename at position %d contains disallowed content", i))
		}
	}
}

// ValidateMetadata bounds serialized size, guards reserved and
// malicious keys, and bounds string values.
func ValidateMetadata(metadata map[string]any, res *Result) {
	if len(metadata) == 0 {
		return
	}
	if serialized, err := json.Marshal(metadata); err != nil {
		res.AddError("metadata", "metadata is not serializable")
	} else if len(serialized) > metadataMaxBytes {
		res.AddError("metadata", "metadata exceeds the 5KB size limit")
	}
	for key, value := range metadata {
		if _, reserved := metadataReservedKeys[key]; reserved {
			res.AddErrorf("metadata", "metadata key %q is reserved", key)
			continue
		}
		if ContainsMaliciousContent(key) {
			res.AddSecurityError("metadata", fmt.Sprintf("metadata key %q contains disallowed content", key))
			continue
		}
		if str, ok := value.(string); ok && utf8.RuneCountInString(str) > metadataValueMaxLen {
			res.AddErrorf("metadata", "metadata value for %q exceeds %d characters", key, metadataValueMaxLen)
		}
	}
}

// ValidateUserID accepts 24-hex object ids and UUIDv4 values, the two
// identifier formats used for cross-references.
func ValidateUserID(field string, id *string, res *Result) {
	if id == nil {
		return
	}
	if !IsValidUserID(*id) {
		res.AddErrorf(field, "%s is not a valid user id", field)
	}
}

// IsValidUserID reports whether the id matches either accepted format.
func IsValidUserID(id string) bool {
	return objectIDPattern.MatchString(id) || uuidV4Pattern.MatchString(id)
}

// IsValidTicketID reports whether the id matches either accepted
// format. Bulk operations reject anything else before touching the
// database.
func IsValidTicketID(id string) bool {
	return objectIDPattern.MatchString(id) || uuidV4Pattern.MatchString(id)
}

func enumList[T ~string](set map[string]T) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
