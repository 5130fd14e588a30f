package domain

import "time"

// UserRole enumerates access levels.
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleTechnician UserRole = "technician"
	RoleAdmin      UserRole = "admin"
)

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the domain model for helpdesk accounts. Token columns hold
// SHA-256 digests only; raw reset and verification values are never
// persisted.
type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	Role               UserRole
	Status             UserStatus
	EmailVerified      bool
	PasswordChangedAt  *time.Time
	ResetTokenHash     *string
	ResetTokenExpires  *time.Time
	VerifyTokenHash    *string
	VerifyTokenExpires *time.Time
	RefreshToken       *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
