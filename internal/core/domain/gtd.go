package domain

import "time"

// Thought is a captured inbox item awaiting processing.
type Thought struct {
	ID          string
	UserID      string
	Content     string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// IsProcessed reports whether the thought has left the inbox.
func (t Thought) IsProcessed() bool {
	return t.ProcessedAt != nil
}

// ProjectStatus enumerates the lifecycle states of a project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusSomeday   ProjectStatus = "someday"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusDropped   ProjectStatus = "dropped"
)

// Project is a multi-step outcome the user is committed to.
type Project struct {
	ID        string
	UserID    string
	Name      string
	Outcome   string
	Status    ProjectStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActionStatus enumerates the lifecycle states of a next action.
type ActionStatus string

const (
	ActionStatusNext    ActionStatus = "next"
	ActionStatusWaiting ActionStatus = "waiting"
	ActionStatusDone    ActionStatus = "done"
	ActionStatusDropped ActionStatus = "dropped"
)

// Action is a single concrete step, optionally belonging to a project.
type Action struct {
	ID          string
	UserID      string
	ProjectID   *string
	Description string
	Context     *string
	Status      ActionStatus
	DueAt       *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
