package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/core/port"
	"github.com/csmathguy/clarity/internal/repository"
)

// ThoughtRepository implements port.ThoughtRepository using PostgreSQL.
// Every statement is scoped by user_id, so a thought owned by another user is
// indistinguishable from a missing one.
type ThoughtRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewThoughtRepository constructs a PostgreSQL-backed thought repository.
func NewThoughtRepository(exec pgExecutor) *ThoughtRepository {
	return &ThoughtRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a captured thought.
func (r *ThoughtRepository) Create(ctx context.Context, thought domain.Thought) error {
	stmt, args, err := r.builder.Insert("clarity.thoughts").
		Columns("id", "user_id", "content", "created_at", "processed_at").
		Values(thought.ID, thought.UserID, thought.Content, thought.CreatedAt, thought.ProcessedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert thought sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert thought: %w", err)
	}

	return nil
}

// GetByID fetches one thought owned by the given user.
func (r *ThoughtRepository) GetByID(ctx context.Context, userID, id string) (*domain.Thought, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "content", "created_at", "processed_at").
		From("clarity.thoughts").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select thought sql: %w", err)
	}

	var thought domain.Thought
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&thought.ID,
		&thought.UserID,
		&thought.Content,
		&thought.CreatedAt,
		&thought.ProcessedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan thought: %w", err)
	}

	return &thought, nil
}

// ListInbox returns unprocessed thoughts, oldest first.
func (r *ThoughtRepository) ListInbox(ctx context.Context, userID string) ([]domain.Thought, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "content", "created_at", "processed_at").
		From("clarity.thoughts").
		Where(squirrel.Eq{"user_id": userID}).
		Where("processed_at IS NULL").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list inbox sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	defer rows.Close()

	var thoughts []domain.Thought
	for rows.Next() {
		var thought domain.Thought
		if err := rows.Scan(
			&thought.ID,
			&thought.UserID,
			&thought.Content,
			&thought.CreatedAt,
			&thought.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan thought row: %w", err)
		}
		thoughts = append(thoughts, thought)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thought rows: %w", err)
	}

	return thoughts, nil
}

// MarkProcessed stamps processed_at on an unprocessed thought.
func (r *ThoughtRepository) MarkProcessed(ctx context.Context, userID, id string) error {
	stmt, args, err := r.builder.Update("clarity.thoughts").
		Set("processed_at", r.now()).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		Where("processed_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark thought processed sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark thought processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a thought owned by the given user.
func (r *ThoughtRepository) Delete(ctx context.Context, userID, id string) error {
	stmt, args, err := r.builder.Delete("clarity.thoughts").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete thought sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete thought: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.ThoughtRepository = (*ThoughtRepository)(nil)
