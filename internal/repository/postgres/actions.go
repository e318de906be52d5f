package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/core/port"
	"github.com/csmathguy/clarity/internal/repository"
)

const actionColumns = "id, user_id, project_id, description, context, status, due_at, created_at, updated_at"

// ActionRepository implements port.ActionRepository using PostgreSQL.
type ActionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewActionRepository constructs a PostgreSQL-backed action repository.
func NewActionRepository(exec pgExecutor) *ActionRepository {
	return &ActionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts an action row.
func (r *ActionRepository) Create(ctx context.Context, action domain.Action) error {
	stmt, args, err := r.builder.Insert("clarity.actions").
		Columns("id", "user_id", "project_id", "description", "context", "status", "due_at", "created_at", "updated_at").
		Values(
			action.ID,
			action.UserID,
			action.ProjectID,
			action.Description,
			action.Context,
			action.Status,
			action.DueAt,
			action.CreatedAt,
			action.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert action sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert action: %w", err)
	}

	return nil
}

func scanAction(row pgx.Row) (*domain.Action, error) {
	var action domain.Action
	if err := row.Scan(
		&action.ID,
		&action.UserID,
		&action.ProjectID,
		&action.Description,
		&action.Context,
		&action.Status,
		&action.DueAt,
		&action.CreatedAt,
		&action.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan action: %w", err)
	}
	return &action, nil
}

// GetByID fetches an action owned by the given user.
func (r *ActionRepository) GetByID(ctx context.Context, userID, id string) (*domain.Action, error) {
	stmt, args, err := r.builder.
		Select(actionColumns).
		From("clarity.actions").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select action sql: %w", err)
	}

	return scanAction(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByUser returns actions owned by the user, optionally filtered by status
// and project.
func (r *ActionRepository) ListByUser(ctx context.Context, userID string, filter port.ActionFilter) ([]domain.Action, error) {
	query := r.builder.
		Select(actionColumns).
		From("clarity.actions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.ProjectID != "" {
		query = query.Where(squirrel.Eq{"project_id": filter.ProjectID})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list actions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.Action
	for rows.Next() {
		var action domain.Action
		if err := rows.Scan(
			&action.ID,
			&action.UserID,
			&action.ProjectID,
			&action.Description,
			&action.Context,
			&action.Status,
			&action.DueAt,
			&action.CreatedAt,
			&action.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action rows: %w", err)
	}

	return actions, nil
}

// Update rewrites the mutable action fields.
func (r *ActionRepository) Update(ctx context.Context, action domain.Action) error {
	stmt, args, err := r.builder.Update("clarity.actions").
		Set("project_id", action.ProjectID).
		Set("description", action.Description).
		Set("context", action.Context).
		Set("status", action.Status).
		Set("due_at", action.DueAt).
		Set("updated_at", action.UpdatedAt).
		Where(squirrel.Eq{"id": action.ID, "user_id": action.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update action sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update action: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes an action owned by the given user.
func (r *ActionRepository) Delete(ctx context.Context, userID, id string) error {
	stmt, args, err := r.builder.Delete("clarity.actions").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete action sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.ActionRepository = (*ActionRepository)(nil)
