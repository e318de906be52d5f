package port

import (
	"context"

	"github.com/csmathguy/clarity/internal/core/domain"
)

// ThoughtRepository stores captured inbox items. All lookups are scoped by
// owner, so a thought belonging to another user is indistinguishable from a
// missing one.
type ThoughtRepository interface {
	Create(ctx context.Context, thought domain.Thought) error
	GetByID(ctx context.Context, userID, id string) (*domain.Thought, error)
	ListInbox(ctx context.Context, userID string) ([]domain.Thought, error)
	MarkProcessed(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error
}

// ProjectRepository stores projects, scoped by owner.
type ProjectRepository interface {
	Create(ctx context.Context, project domain.Project) error
	GetByID(ctx context.Context, userID, id string) (*domain.Project, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Project, error)
	Update(ctx context.Context, project domain.Project) error
	Delete(ctx context.Context, userID, id string) error
}

// ActionFilter narrows action listings.
type ActionFilter struct {
	Status    domain.ActionStatus
	ProjectID string
}

// ActionRepository stores next actions, scoped by owner.
type ActionRepository interface {
	Create(ctx context.Context, action domain.Action) error
	GetByID(ctx context.Context, userID, id string) (*domain.Action, error)
	ListByUser(ctx context.Context, userID string, filter ActionFilter) ([]domain.Action, error)
	Update(ctx context.Context, action domain.Action) error
	Delete(ctx context.Context, userID, id string) error
}
