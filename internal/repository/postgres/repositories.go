package postgres

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users    *UserRepository
	Sessions *SessionRepository
	Tokens   *ResetTokenRepository
	Thoughts *ThoughtRepository
	Projects *ProjectRepository
	Actions  *ActionRepository
}

// NewRepositories wires all repositories backed by the provided executor.
func NewRepositories(exec pgExecutor) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(exec),
		Sessions: NewSessionRepository(exec),
		Tokens:   NewResetTokenRepository(exec),
		Thoughts: NewThoughtRepository(exec),
		Projects: NewProjectRepository(exec),
		Actions:  NewActionRepository(exec),
	}
}
