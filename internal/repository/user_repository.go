package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrRefreshTokenSuperseded signals that a concurrent rotation already
// replaced the stored refresh token; the losing request must re-login.
var ErrRefreshTokenSuperseded = errors.New("refresh token superseded")

// UserRepository defines persistence access for helpdesk accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword stores a new hash, stamps password_changed_at,
	// and clears any outstanding reset token and refresh token so
	// previously issued credentials go stale.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetResetToken overwrites the stored reset token digest; issuing
	// a new token silently invalidates any prior unexpired one.
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)

	SetVerifyToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	// ConsumeVerifyToken marks the account verified and clears the
	// token in one statement; pgx.ErrNoRows means not found or expired.
	ConsumeVerifyToken(ctx context.Context, tokenHash string) (*domain.User, error)

	// ReplaceRefreshToken unconditionally stores the refresh token
	// issued at login, overwriting any previous value.
	ReplaceRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken swaps old for new only if old is still the
	// stored value; the loser of a concurrent rotation gets
	// ErrRefreshTokenSuperseded.
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error
	ClearRefreshToken(ctx context.Context, id string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, status, email_verified,
       password_changed_at, reset_token_hash, reset_token_expires,
       verify_token_hash, verify_token_expires, refresh_token, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, status, email_verified)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.EmailVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, role=$3, status=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.Role,
		user.Status,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + `
        FROM users WHERE reset_token_hash=$1 AND reset_token_expires > NOW()`
	return r.fetchSingle(ctx, query, tokenHash)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.EmailVerified,
		&user.PasswordChangedAt,
		&user.ResetTokenHash,
		&user.ResetTokenExpires,
		&user.VerifyTokenHash,
		&user.VerifyTokenExpires,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
        UPDATE users SET password_hash=$1, password_changed_at=NOW(),
            reset_token_hash=NULL, reset_token_expires=NULL,
            refresh_token=NULL, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	const query = `
        UPDATE users SET reset_token_hash=$1, reset_token_expires=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, tokenHash, expires, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetVerifyToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	const query = `
        UPDATE users SET verify_token_hash=$1, verify_token_expires=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, tokenHash, expires, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) ConsumeVerifyToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	const query = `
        UPDATE users SET email_verified=TRUE, verify_token_hash=NULL,
            verify_token_expires=NULL, updated_at=NOW()
        WHERE verify_token_hash=$1 AND verify_token_expires > NOW()
        RETURNING ` + userColumns
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.EmailVerified,
		&user.PasswordChangedAt,
		&user.ResetTokenHash,
		&user.ResetTokenExpires,
		&user.VerifyTokenHash,
		&user.VerifyTokenExpires,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ReplaceRefreshToken(ctx context.Context, id, token string) error {
	const query = `UPDATE users SET refresh_token=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, token, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error {
	const query = `
        UPDATE users SET refresh_token=$1, updated_at=NOW()
        WHERE id=$2 AND refresh_token=$3`
	cmd, err := r.pool.Exec(ctx, query, newToken, id, oldToken)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRefreshTokenSuperseded
	}
	return nil
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, id string) error {
	const query = `UPDATE users SET refresh_token=NULL, updated_at=NOW() WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
