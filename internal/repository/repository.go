package repository

import (
	"context"

	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/utils"
)

// TaskMutation edits a task loaded inside a transaction and optionally returns
// a ledger entry to append in the same transaction. Returning an error rolls
// the transaction back.
type TaskMutation func(task *models.Task) (*models.TaskInteraction, error)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithCollaborators inserts the task, provisions every assignee that
	// does not exist yet from the template user, and links the assignees, all
	// in one transaction.
	CreateWithCollaborators(ctx context.Context, task *models.Task, assignees []string, template models.User) error

	// FindByID finds a task by ID with its collaborators loaded
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves tasks with their collaborators, ordered by ID
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Mutate applies fn to the stored task and persists stage, progress and
	// completion date (last writer wins on those columns).
	Mutate(ctx context.Context, id uint64, fn TaskMutation) (*models.Task, error)

	// ListCollaborators returns every assignment row
	ListCollaborators(ctx context.Context) ([]models.TaskCollaborator, error)

	// Purge deletes all assignments, interactions and tasks. Users are kept.
	Purge(ctx context.Context) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Stage    *models.Stage
	Assignee *string
}

// InteractionRepository defines the interface for ledger data access
type InteractionRepository interface {
	// Create appends an interaction
	Create(ctx context.Context, entry *models.TaskInteraction) error

	// ListByTask returns the full history of a task in ledger order
	ListByTask(ctx context.Context, taskID uint64) ([]models.TaskInteraction, error)

	// ListAll returns every interaction in ledger order
	ListAll(ctx context.Context) ([]models.TaskInteraction, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// CreateIfAbsent inserts user unless the username exists and returns the
	// stored row. created reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, user *models.User) (stored *models.User, created bool, err error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdatePassword replaces the password hash and the forced-reset flag
	UpdatePassword(ctx context.Context, username, passwordHash string, mustChange bool) error

	// List returns a page of users ordered by username
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)

	// ListAll returns every user ordered by username
	ListAll(ctx context.Context) ([]models.User, error)
}
