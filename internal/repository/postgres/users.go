package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/core/port"
	"github.com/csmathguy/clarity/internal/repository"
)

const userColumns = "id, username, email, phone, name, password_hash, role, status, failed_login_count, lockout_until, last_login_at, password_changed_at, created_at"

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new user row. Uniqueness violations on username or email
// surface as repository.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	var emailValue any
	if user.Email != nil && *user.Email != "" {
		emailValue = *user.Email
	}

	var phoneValue any
	if user.Phone != nil && *user.Phone != "" {
		phoneValue = *user.Phone
	}

	query := r.builder.Insert("clarity.users").
		Columns(
			"id",
			"username",
			"email",
			"phone",
			"name",
			"password_hash",
			"role",
			"status",
			"failed_login_count",
			"lockout_until",
			"last_login_at",
			"password_changed_at",
			"created_at",
		).
		Values(
			user.ID,
			user.Username,
			emailValue,
			phoneValue,
			user.Name,
			user.PasswordHash,
			user.Role,
			user.Status,
			user.FailedLoginCount,
			user.LockoutUntil,
			user.LastLoginAt,
			user.PasswordChangedAt,
			user.CreatedAt,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user  domain.User
		email sql.NullString
		phone sql.NullString
	)

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&email,
		&phone,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.FailedLoginCount,
		&user.LockoutUntil,
		&user.LastLoginAt,
		&user.PasswordChangedAt,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if email.Valid {
		val := email.String
		user.Email = &val
	}
	if phone.Valid {
		val := phone.String
		user.Phone = &val
	}

	return &user, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns).
		From("clarity.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByIdentifier retrieves a user by username or email. When one user's
// username equals another user's email, the username match wins.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns).
		From("clarity.users").
		Where(squirrel.Or{
			squirrel.Eq{"username": identifier},
			squirrel.Eq{"email": identifier},
		}).
		OrderByClause("(username = ?) DESC", identifier).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by identifier sql: %w", err)
	}

	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// UpdateStatus changes the account status.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	stmt, args, err := r.builder.Update("clarity.users").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user status sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword replaces the stored hash and clears lockout state so a reset
// password takes effect immediately.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error {
	stmt, args, err := r.builder.Update("clarity.users").
		Set("password_hash", passwordHash).
		Set("password_changed_at", changedAt).
		Set("failed_login_count", 0).
		Set("lockout_until", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user password sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// RecordLoginFailure increments failed_login_count and stamps lockout_until
// when the incremented value reaches threshold. A single UPDATE keeps the
// increment and the lockout decision linearized under concurrent attempts.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, id string, threshold int, lockoutUntil time.Time) (int, error) {
	const stmt = `
UPDATE clarity.users
SET failed_login_count = failed_login_count + 1,
    lockout_until = CASE
        WHEN failed_login_count + 1 >= $2 THEN $3
        ELSE lockout_until
    END
WHERE id = $1
RETURNING failed_login_count`

	var count int
	if err := r.exec.QueryRow(ctx, stmt, id, threshold, lockoutUntil).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("record login failure: %w", err)
	}

	return count, nil
}

// RecordLoginSuccess resets the lockout counters and stamps last_login_at.
func (r *UserRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	stmt, args, err := r.builder.Update("clarity.users").
		Set("failed_login_count", 0).
		Set("lockout_until", nil).
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record login success sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("record login success: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.UserRepository = (*UserRepository)(nil)
