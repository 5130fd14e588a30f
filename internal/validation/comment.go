package validation

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	commentMinLen = 1
	commentMaxLen = 2000
)

// CommentInput is the raw comment payload.
type CommentInput struct {
	Content    *string `json:"content"`
	Author     *string `json:"author"`
	IsInternal *bool   `json:"isInternal"`
}

// SanitizedComment is the cleaned comment produced on success.
type SanitizedComment struct {
	Content    string
	Author     *string
	IsInternal bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CommentValidation bundles the result with sanitized data.
type CommentValidation struct {
	Result
	Sanitized SanitizedComment
}

// ValidateComment checks a ticket comment. Content is required and
// bounded, the optional author must be a valid user id, and both
// timestamps are stamped on success.
func ValidateComment(input *CommentInput) *CommentValidation {
	out := &CommentValidation{Result: Result{Valid: true}}
	if input == nil {
		out.AddError("", "comment payload must be an object")
		return out
	}

	if isBlank(input.Content) {
		out.AddError("content", "content is required")
	} else {
		content := strings.TrimSpace(*input.Content)
		if length := utf8.RuneCountInString(content); length < commentMinLen || length > commentMaxLen {
			out.AddErrorf("content", "content must be between %d and %d characters", commentMinLen, commentMaxLen)
		}
		if ContainsMaliciousContent(content) {
			out.AddSecurityError("content", "content contains disallowed content")
		}
	}

	ValidateUserID("author", input.Author, &out.Result)

	if !out.Valid {
		return out
	}

	now := time.Now().UTC()
	out.Sanitized.Content = strings.TrimSpace(*input.Content)
	out.Sanitized.Author = input.Author
	if input.IsInternal != nil {
		out.Sanitized.IsInternal = *input.IsInternal
	}
	out.Sanitized.CreatedAt = now
	out.Sanitized.UpdatedAt = now
	return out
}
