package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/core/port"
	"github.com/csmathguy/clarity/internal/repository"
)

// ErrRecordNotFound indicates the requested record does not exist or belongs
// to another user.
var ErrRecordNotFound = errors.New("record not found")

// GTDService covers thought capture and project/action management. Every
// operation is scoped to the calling user; records owned by someone else
// behave exactly like missing records.
type GTDService struct {
	thoughts port.ThoughtRepository
	projects port.ProjectRepository
	actions  port.ActionRepository
	now      func() time.Time
}

// NewGTDService constructs a GTDService instance.
func NewGTDService(
	thoughts port.ThoughtRepository,
	projects port.ProjectRepository,
	actions port.ActionRepository,
) *GTDService {
	return &GTDService{
		thoughts: thoughts,
		projects: projects,
		actions:  actions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Intended for tests.
func (s *GTDService) WithClock(now func() time.Time) *GTDService {
	s.now = now
	return s
}

func mapNotFound(err error, wrap string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRecordNotFound
	}
	return fmt.Errorf("%s: %w", wrap, err)
}

// CaptureThought drops a new item into the user's inbox.
func (s *GTDService) CaptureThought(ctx context.Context, userID, content string) (*domain.Thought, error) {
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}

	thought := domain.Thought{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now(),
	}

	if err := s.thoughts.Create(ctx, thought); err != nil {
		return nil, fmt.Errorf("capture thought: %w", err)
	}

	return &thought, nil
}

// ListInbox returns the user's unprocessed thoughts, oldest first.
func (s *GTDService) ListInbox(ctx context.Context, userID string) ([]domain.Thought, error) {
	thoughts, err := s.thoughts.ListInbox(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return thoughts, nil
}

// ProcessThought marks a thought as processed, removing it from the inbox.
func (s *GTDService) ProcessThought(ctx context.Context, userID, thoughtID string) error {
	if err := s.thoughts.MarkProcessed(ctx, userID, thoughtID); err != nil {
		return mapNotFound(err, "process thought")
	}
	return nil
}

// DeleteThought discards a thought.
func (s *GTDService) DeleteThought(ctx context.Context, userID, thoughtID string) error {
	if err := s.thoughts.Delete(ctx, userID, thoughtID); err != nil {
		return mapNotFound(err, "delete thought")
	}
	return nil
}

// CreateProject starts a new project.
func (s *GTDService) CreateProject(ctx context.Context, userID, name, outcome string) (*domain.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	now := s.now()
	project := domain.Project{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Outcome:   outcome,
		Status:    domain.ProjectStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	return &project, nil
}

// GetProject fetches one project.
func (s *GTDService) GetProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, userID, projectID)
	if err != nil {
		return nil, mapNotFound(err, "get project")
	}
	return project, nil
}

// ListProjects returns all of the user's projects.
func (s *GTDService) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	projects, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// UpdateProjectInput carries the mutable project attributes.
type UpdateProjectInput struct {
	Name    string
	Outcome string
	Status  domain.ProjectStatus
}

// UpdateProject rewrites a project's mutable fields.
func (s *GTDService) UpdateProject(ctx context.Context, userID, projectID string, input UpdateProjectInput) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, userID, projectID)
	if err != nil {
		return nil, mapNotFound(err, "get project")
	}

	if input.Name != "" {
		project.Name = input.Name
	}
	if input.Outcome != "" {
		project.Outcome = input.Outcome
	}
	if input.Status != "" {
		switch input.Status {
		case domain.ProjectStatusActive, domain.ProjectStatusSomeday, domain.ProjectStatusCompleted, domain.ProjectStatusDropped:
			project.Status = input.Status
		default:
			return nil, fmt.Errorf("unsupported project status %q", input.Status)
		}
	}
	project.UpdatedAt = s.now()

	if err := s.projects.Update(ctx, *project); err != nil {
		return nil, mapNotFound(err, "update project")
	}

	return project, nil
}

// DeleteProject removes a project.
func (s *GTDService) DeleteProject(ctx context.Context, userID, projectID string) error {
	if err := s.projects.Delete(ctx, userID, projectID); err != nil {
		return mapNotFound(err, "delete project")
	}
	return nil
}

// CreateActionInput carries the attributes for a new action.
type CreateActionInput struct {
	ProjectID   *string
	Description string
	Context     *string
	DueAt       *time.Time
}

// CreateAction records a next action, optionally attached to a project.
func (s *GTDService) CreateAction(ctx context.Context, userID string, input CreateActionInput) (*domain.Action, error) {
	if input.Description == "" {
		return nil, fmt.Errorf("description is required")
	}

	if input.ProjectID != nil {
		if _, err := s.projects.GetByID(ctx, userID, *input.ProjectID); err != nil {
			return nil, mapNotFound(err, "resolve project")
		}
	}

	now := s.now()
	action := domain.Action{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProjectID:   input.ProjectID,
		Description: input.Description,
		Context:     input.Context,
		Status:      domain.ActionStatusNext,
		DueAt:       input.DueAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.actions.Create(ctx, action); err != nil {
		return nil, fmt.Errorf("create action: %w", err)
	}

	return &action, nil
}

// ListActions returns the user's actions, optionally filtered.
func (s *GTDService) ListActions(ctx context.Context, userID string, filter port.ActionFilter) ([]domain.Action, error) {
	actions, err := s.actions.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return actions, nil
}

// UpdateActionInput carries the mutable action attributes.
type UpdateActionInput struct {
	ProjectID   *string
	Description string
	Context     *string
	Status      domain.ActionStatus
	DueAt       *time.Time
}

// UpdateAction rewrites an action's mutable fields.
func (s *GTDService) UpdateAction(ctx context.Context, userID, actionID string, input UpdateActionInput) (*domain.Action, error) {
	action, err := s.actions.GetByID(ctx, userID, actionID)
	if err != nil {
		return nil, mapNotFound(err, "get action")
	}

	if input.Description != "" {
		action.Description = input.Description
	}
	if input.Context != nil {
		action.Context = input.Context
	}
	if input.ProjectID != nil {
		if *input.ProjectID == "" {
			action.ProjectID = nil
		} else {
			if _, err := s.projects.GetByID(ctx, userID, *input.ProjectID); err != nil {
				return nil, mapNotFound(err, "resolve project")
			}
			action.ProjectID = input.ProjectID
		}
	}
	if input.Status != "" {
		switch input.Status {
		case domain.ActionStatusNext, domain.ActionStatusWaiting, domain.ActionStatusDone, domain.ActionStatusDropped:
			action.Status = input.Status
		default:
			return nil, fmt.Errorf("unsupported action status %q", input.Status)
		}
	}
	if input.DueAt != nil {
		action.DueAt = input.DueAt
	}
	action.UpdatedAt = s.now()

	if err := s.actions.Update(ctx, *action); err != nil {
		return nil, mapNotFound(err, "update action")
	}

	return action, nil
}

// DeleteAction removes an action.
func (s *GTDService) DeleteAction(ctx context.Context, userID, actionID string) error {
	if err := s.actions.Delete(ctx, userID, actionID); err != nil {
		return mapNotFound(err, "delete action")
	}
	return nil
}
