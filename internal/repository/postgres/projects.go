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

const projectColumns = "id, user_id, name, outcome, status, created_at, updated_at"

// ProjectRepository implements port.ProjectRepository using PostgreSQL.
type ProjectRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProjectRepository constructs a PostgreSQL-backed project repository.
func NewProjectRepository(exec pgExecutor) *ProjectRepository {
	return &ProjectRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a project row.
func (r *ProjectRepository) Create(ctx context.Context, project domain.Project) error {
	stmt, args, err := r.builder.Insert("clarity.projects").
		Columns("id", "user_id", "name", "outcome", "status", "created_at", "updated_at").
		Values(
			project.ID,
			project.UserID,
			project.Name,
			project.Outcome,
			project.Status,
			project.CreatedAt,
			project.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert project sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	return nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Outcome,
		&project.Status,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &project, nil
}

// GetByID fetches a project owned by the given user.
func (r *ProjectRepository) GetByID(ctx context.Context, userID, id string) (*domain.Project, error) {
	stmt, args, err := r.builder.
		Select(projectColumns).
		From("clarity.projects").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select project sql: %w", err)
	}

	return scanProject(r.exec.QueryRow(ctx, stmt, args...))
}

// ListByUser returns all projects owned by the user, most recently updated first.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	stmt, args, err := r.builder.
		Select(projectColumns).
		From("clarity.projects").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list projects sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.UserID,
			&project.Name,
			&project.Outcome,
			&project.Status,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project rows: %w", err)
	}

	return projects, nil
}

// Update rewrites the mutable project fields.
func (r *ProjectRepository) Update(ctx context.Context, project domain.Project) error {
	stmt, args, err := r.builder.Update("clarity.projects").
		Set("name", project.Name).
		Set("outcome", project.Outcome).
		Set("status", project.Status).
		Set("updated_at", project.UpdatedAt).
		Where(squirrel.Eq{"id": project.ID, "user_id": project.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update project sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a project owned by the given user.
func (r *ProjectRepository) Delete(ctx context.Context, userID, id string) error {
	stmt, args, err := r.builder.Delete("clarity.projects").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete project sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.ProjectRepository = (*ProjectRepository)(nil)
