package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/csmathguy/clarity/internal/core/domain"
	"github.com/csmathguy/clarity/internal/core/port"
	"github.com/csmathguy/clarity/internal/repository"
	"time"
)

type fakeThoughtRepo struct {
	mu       sync.Mutex
	thoughts map[string]*domain.Thought
}

func newFakeThoughtRepo() *fakeThoughtRepo {
	return &fakeThoughtRepo{thoughts: make(map[string]*domain.Thought)}
}

func (m *fakeThoughtRepo) Create(_ context.Context, thought domain.Thought) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := thought
	m.thoughts[thought.ID] = &t
	return nil
}

func (m *fakeThoughtRepo) GetByID(_ context.Context, userID, id string) (*domain.Thought, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	thought, ok := m.thoughts[id]
	if !ok || thought.UserID != userID {
		return nil, repository.ErrNotFound
	}
	t := *thought
	return &t, nil
}

func (m *fakeThoughtRepo) ListInbox(_ context.Context, userID string) ([]domain.Thought, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Thought
	for _, thought := range m.thoughts {
		if thought.UserID == userID && thought.ProcessedAt == nil {
			out = append(out, *thought)
		}
	}
	return out, nil
}

func (m *fakeThoughtRepo) MarkProcessed(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	thought, ok := m.thoughts[id]
	if !ok || thought.UserID != userID || thought.ProcessedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now().UTC()
	thought.ProcessedAt = &now
	return nil
}

func (m *fakeThoughtRepo) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	thought, ok := m.thoughts[id]
	if !ok || thought.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.thoughts, id)
	return nil
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*domain.Project)}
}

func (m *fakeProjectRepo) Create(_ context.Context, project domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := project
	m.projects[project.ID] = &p
	return nil
}

func (m *fakeProjectRepo) GetByID(_ context.Context, userID, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	project, ok := m.projects[id]
	if !ok || project.UserID != userID {
		return nil, repository.ErrNotFound
	}
	p := *project
	return &p, nil
}

func (m *fakeProjectRepo) ListByUser(_ context.Context, userID string) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Project
	for _, project := range m.projects {
		if project.UserID == userID {
			out = append(out, *project)
		}
	}
	return out, nil
}

func (m *fakeProjectRepo) Update(_ context.Context, project domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.projects[project.ID]
	if !ok || existing.UserID != project.UserID {
		return repository.ErrNotFound
	}
	p := project
	m.projects[project.ID] = &p
	return nil
}

func (m *fakeProjectRepo) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	project, ok := m.projects[id]
	if !ok || project.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

type fakeActionRepo struct {
	mu      sync.Mutex
	actions map[string]*domain.Action
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{actions: make(map[string]*domain.Action)}
}

func (m *fakeActionRepo) Create(_ context.Context, action domain.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := action
	m.actions[action.ID] = &a
	return nil
}

func (m *fakeActionRepo) GetByID(_ context.Context, userID, id string) (*domain.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	action, ok := m.actions[id]
	if !ok || action.UserID != userID {
		return nil, repository.ErrNotFound
	}
	a := *action
	return &a, nil
}

func (m *fakeActionRepo) ListByUser(_ context.Context, userID string, filter port.ActionFilter) ([]domain.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Action
	for _, action := range m.actions {
		if action.UserID != userID {
			continue
		}
		if filter.Status != "" && action.Status != filter.Status {
			continue
		}
		if filter.ProjectID != "" && (action.ProjectID == nil || *action.ProjectID != filter.ProjectID) {
			continue
		}
		out = append(out, *action)
	}
	return out, nil
}

func (m *fakeActionRepo) Update(_ context.Context, action domain.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.actions[action.ID]
	if !ok || existing.UserID != action.UserID {
		return repository.ErrNotFound
	}
	a := action
	m.actions[action.ID] = &a
	return nil
}

func (m *fakeActionRepo) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	action, ok := m.actions[id]
	if !ok || action.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.actions, id)
	return nil
}

func newGTDFixture() (*GTDService, *fakeThoughtRepo, *fakeProjectRepo, *fakeActionRepo) {
	thoughts := newFakeThoughtRepo()
	projects := newFakeProjectRepo()
	actions := newFakeActionRepo()
	svc := NewGTDService(thoughts, projects, actions)
	return svc, thoughts, projects, actions
}

func TestCaptureThought_AppearsInInbox(t *testing.T) {
	svc, _, _, _ := newGTDFixture()

	thought, err := svc.CaptureThought(context.Background(), "user-1", "call the plumber")
	if err != nil {
		t.Fatalf("CaptureThought returned error: %v", err)
	}

	inbox, err := svc.ListInbox(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListInbox returned error: %v", err)
	}
	if len(inbox) != 1 || inbox[0].ID != thought.ID {
		t.Fatalf("expected captured thought in inbox, got %v", inbox)
	}
}

func TestProcessThought_LeavesInbox(t *testing.T) {
	svc, _, _, _ := newGTDFixture()

	thought, err := svc.CaptureThought(context.Background(), "user-1", "plan the trip")
	if err != nil {
		t.Fatalf("CaptureThought returned error: %v", err)
	}

	if err := svc.ProcessThought(context.Background(), "user-1", thought.ID); err != nil {
		t.Fatalf("ProcessThought returned error: %v", err)
	}

	inbox, _ := svc.ListInbox(context.Background(), "user-1")
	if len(inbox) != 0 {
		t.Fatalf("expected empty inbox after processing, got %d items", len(inbox))
	}

	// Processing twice fails: the item already left the inbox.
	if err := svc.ProcessThought(context.Background(), "user-1", thought.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on reprocess, got %v", err)
	}
}

func TestGTD_CrossUserAccessBehavesAsMissing(t *testing.T) {
	svc, _, _, _ := newGTDFixture()

	thought, err := svc.CaptureThought(context.Background(), "user-1", "private note")
	if err != nil {
		t.Fatalf("CaptureThought returned error: %v", err)
	}

	if err := svc.ProcessThought(context.Background(), "user-2", thought.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for other user's thought, got %v", err)
	}
	if err := svc.DeleteThought(context.Background(), "user-2", thought.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on cross-user delete, got %v", err)
	}
}

func TestCreateAction_ResolvesProjectOwnership(t *testing.T) {
	svc, _, _, _ := newGTDFixture()

	project, err := svc.CreateProject(context.Background(), "user-1", "Kitchen remodel", "Kitchen fully renovated")
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}

	action, err := svc.CreateAction(context.Background(), "user-1", CreateActionInput{
		ProjectID:   &project.ID,
		Description: "get three contractor quotes",
	})
	if err != nil {
		t.Fatalf("CreateAction returned error: %v", err)
	}
	if action.Status != domain.ActionStatusNext {
		t.Fatalf("expected status next, got %s", action.Status)
	}

	// Another user cannot attach actions to the project.
	if _, err := svc.CreateAction(context.Background(), "user-2", CreateActionInput{
		ProjectID:   &project.ID,
		Description: "sneaky action",
	}); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for foreign project, got %v", err)
	}
}

func TestUpdateAction_StatusTransitions(t *testing.T) {
	svc, _, _, _ := newGTDFixture()

	action, err := svc.CreateAction(context.Background(), "user-1", CreateActionInput{Description: "draft the report"})
	if err != nil {
		t.Fatalf("CreateAction returned error: %v", err)
	}

	updated, err := svc.UpdateAction(context.Background(), "user-1", action.ID, UpdateActionInput{Status: domain.ActionStatusDone})
	if err != nil {
		t.Fatalf("UpdateAction returned error: %v", err)
	}
	if updated.Status != domain.ActionStatusDone {
		t.Fatalf("expected status done, got %s", updated.Status)
	}

	if _, err := svc.UpdateAction(context.Background(), "user-1", action.ID, UpdateActionInput{Status: "paused"}); err == nil {
		t.Fatal("expected error for unsupported status")
	}
}

func TestListActions_Filtering(t *testing.T) {
	svc, _, _, _ := newGTDFixture()

	if _, err := svc.CreateAction(context.Background(), "user-1", CreateActionInput{Description: "first"}); err != nil {
		t.Fatalf("CreateAction returned error: %v", err)
	}
	second, err := svc.CreateAction(context.Background(), "user-1", CreateActionInput{Description: "second"})
	if err != nil {
		t.Fatalf("CreateAction returned error: %v", err)
	}
	if _, err := svc.UpdateAction(context.Background(), "user-1", second.ID, UpdateActionInput{Status: domain.ActionStatusDone}); err != nil {
		t.Fatalf("UpdateAction returned error: %v", err)
	}

	next, err := svc.ListActions(context.Background(), "user-1", port.ActionFilter{Status: domain.ActionStatusNext})
	if err != nil {
		t.Fatalf("ListActions returned error: %v", err)
	}
	if len(next) != 1 || next[0].Description != "first" {
		t.Fatalf("expected only the first action with status next, got %v", next)
	}
}
