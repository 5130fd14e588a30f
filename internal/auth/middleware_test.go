package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// stubUserRepo serves a single account to the middleware.
type stubUserRepo struct {
	user *domain.User
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }
func (r *stubUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }
func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *stubUserRepo) UpdatePassword(ctx context.Context, id, hash string) error { return nil }
func (r *stubUserRepo) SetResetToken(ctx context.Context, id, hash string, exp time.Time) error {
	return nil
}
func (r *stubUserRepo) GetByResetTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *stubUserRepo) SetVerifyToken(ctx context.Context, id, hash string, exp time.Time) error {
	return nil
}
func (r *stubUserRepo) ConsumeVerifyToken(ctx context.Context, hash string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *stubUserRepo) ReplaceRefreshToken(ctx context.Context, id, token string) error { return nil }
func (r *stubUserRepo) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error {
	return nil
}
func (r *stubUserRepo) ClearRefreshToken(ctx context.Context, id string) error { return nil }

// newMiddlewareApp mounts a test route behind the given handler. The
// error handler mirrors production status mapping so tests can assert
// on codes.
func newMiddlewareApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/whoami", handler, func(c *fiber.Ctx) error {
		if principal, ok := PrincipalFromContext(c); ok {
			return c.SendString(principal.User.ID)
		}
		return c.SendString("anonymous")
	})
	return app
}

func whoami(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestMiddlewareAuthenticatesValidToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	user := &domain.User{ID: "user-1", Role: domain.RoleUser, Status: domain.UserStatusActive}
	mw := NewMiddleware(tm, &stubUserRepo{user: user})
	app := newMiddlewareApp(mw.Handle)

	token, _, err := tm.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	status, body := whoami(t, app, token)
	if status != http.StatusOK || body != "user-1" {
		t.Errorf("status = %d body = %q, want 200 user-1", status, body)
	}

	if status, _ := whoami(t, app, ""); status != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", status)
	}
}

func TestMiddlewareRejectsRefreshToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	user := &domain.User{ID: "user-1", Role: domain.RoleUser, Status: domain.UserStatusActive}
	mw := NewMiddleware(tm, &stubUserRepo{user: user})
	app := newMiddlewareApp(mw.Handle)

	refresh, _, err := tm.GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if status, _ := whoami(t, app, refresh); status != http.StatusUnauthorized {
		t.Errorf("refresh token status = %d, want 401", status)
	}
}

func TestMiddlewareRejectsStaleToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	user := &domain.User{ID: "user-1", Role: domain.RoleUser, Status: domain.UserStatusActive}
	mw := NewMiddleware(tm, &stubUserRepo{user: user})
	app := newMiddlewareApp(mw.Handle)

	token, _, err := tm.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// A password change after the token was issued invalidates it.
	changed := time.Now().Add(time.Minute)
	user.PasswordChangedAt = &changed
	if status, _ := whoami(t, app, token); status != http.StatusUnauthorized {
		t.Errorf("stale token status = %d, want 401", status)
	}
}

func TestMiddlewareRejectsInactiveAccount(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	user := &domain.User{ID: "user-1", Role: domain.RoleUser, Status: domain.UserStatusActive}
	mw := NewMiddleware(tm, &stubUserRepo{user: user})
	app := newMiddlewareApp(mw.Handle)

	token, _, err := tm.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	user.Status = domain.UserStatusSuspended
	if status, _ := whoami(t, app, token); status != http.StatusForbidden {
		t.Errorf("suspended account status = %d, want 403", status)
	}
}

func TestOptionalAuth(t *testing.T) {
	tm := NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	user := &domain.User{ID: "user-1", Role: domain.RoleUser, Status: domain.UserStatusActive}
	mw := NewMiddleware(tm, &stubUserRepo{user: user})
	app := newMiddlewareApp(mw.Optional)

	// Anonymous requests pass through without a principal.
	status, body := whoami(t, app, "")
	if status != http.StatusOK || body != "anonymous" {
		t.Errorf("status = %d body = %q, want 200 anonymous", status, body)
	}

	// So do requests with a broken token.
	status, body = whoami(t, app, "not-a-jwt")
	if status != http.StatusOK || body != "anonymous" {
		t.Errorf("bad token: status = %d body = %q, want 200 anonymous", status, body)
	}

	// A valid token still resolves the principal.
	token, _, err := tm.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	status, body = whoami(t, app, token)
	if status != http.StatusOK || body != "user-1" {
		t.Errorf("status = %d body = %q, want 200 user-1", status, body)
	}
}
