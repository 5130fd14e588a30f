package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/validation"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TokenPair is the access/refresh pair handed out at login and refresh.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService coordinates registration, login, token rotation, and the
// reset/verification token lifecycle.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	lockout    *auth.LoginLockout
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
	verifyTTL  time.Duration
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Lockout    *auth.LoginLockout
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL()),
		lockout:    deps.Lockout,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   cfg.Auth.PasswordResetTTL(),
		verifyTTL:  cfg.Auth.VerificationTTL(),
	}
}

// Register creates a new account and issues an email-verification
// token. The raw token leaves the service only through the mailer
// event.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if !validation.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("email is not a valid address", nil)
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	rawToken, digest, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}
	if err := s.users.SetVerifyToken(ctx, user.ID, digest, time.Now().Add(s.verifyTTL)); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		ActorID: user.ID,
		Payload: events.UserRegisteredPayload{
			Email:       user.Email,
			Name:        user.Name,
			VerifyToken: rawToken,
		},
	})
	return user, nil
}

// Login authenticates credentials and issues a fresh token pair. The
// stored refresh token is replaced wholesale, logging in invalidates
// any previous refresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	if s.lockout.IsLocked(ctx, email) {
		return nil, nil, apperrors.NewLocked("too many failed login attempts, try again later")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.lockout.RecordFailure(ctx, email)
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, nil, apperrors.NewForbidden("account is not active")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if s.lockout.RecordFailure(ctx, email) {
			s.logger.Warn("account locked after repeated failures", zap.String("email", email))
		}
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	s.lockout.Reset(ctx, email)

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	if err := s.users.ReplaceRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh verifies a refresh token and rotates it. Rotation is a
// compare-and-swap against the stored value: the request must present
// the exact token currently on record, and the loser of a concurrent
// refresh race is rejected rather than silently accepted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *TokenPair, error) {
	claims, err := s.tokenMgr.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, nil, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, nil, apperrors.NewForbidden("account is not active")
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, nil, apperrors.NewUnauthorized("refresh token superseded")
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	if err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenSuperseded) {
			return nil, nil, apperrors.NewUnauthorized("refresh token superseded")
		}
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout clears the stored refresh token; outstanding access tokens
// simply age out.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.users.ClearRefreshToken(ctx, userID)
}

// ForgotPassword issues a reset token for the account, if it exists.
// The return is uniform whether or not the email is registered, so
// the endpoint cannot be used to enumerate accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	rawToken, digest, err := auth.GenerateOpaqueToken()
	if err != nil {
		return err
	}
	// Overwrites any prior unexpired token of the same kind.
	if err := s.users.SetResetToken(ctx, user.ID, digest, time.Now().Add(s.resetTTL)); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventPasswordResetAsked,
		ActorID: user.ID,
		Payload: events.PasswordResetPayload{
			Email:      user.Email,
			ResetToken: rawToken,
		},
	})
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
// The stored refresh token is cleared and password_changed_at stamped,
// so every previously issued credential goes stale.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	user, err := s.users.GetByResetTokenHash(ctx, auth.HashOpaqueToken(rawToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewTokenInvalid()
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// VerifyEmail consumes a verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) (*domain.User, error) {
	user, err := s.users.ConsumeVerifyToken(ctx, auth.HashOpaqueToken(rawToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewTokenInvalid()
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password before updating.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issuePair(user *domain.User) (*TokenPair, error) {
	access, accessExp, err := s.tokenMgr.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokenMgr.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
