package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/kanban-board-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateTask is returned when inserting the task row fails.
	ErrCreateTask = errors.New("task repository: create task failed")
	// ErrProvisionUser is returned when auto-provisioning an assignee fails.
	ErrProvisionUser = errors.New("task repository: provision assignee failed")
	// ErrCreateCollaborators is returned when linking assignees fails.
	ErrCreateCollaborators = errors.New("task repository: create collaborators failed")
	// ErrAppendInteraction is returned when the ledger entry of a mutation fails.
	ErrAppendInteraction = errors.New("task repository: append interaction failed")
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithCollaborators creates a task and its assignments atomically
func (r *GormTaskRepository) CreateWithCollaborators(ctx context.Context, task *models.Task, assignees []string, template models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateTask, err)
		}

		for _, username := range assignees {
			user := template
			user.Username = username
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
				return fmt.Errorf("%w: %w", ErrProvisionUser, err)
			}
		}

		collaborators := make([]models.TaskCollaborator, len(assignees))
		for i, username := range assignees {
			collaborators[i] = models.TaskCollaborator{
				TaskID:   task.ID,
				Username: username,
			}
		}

		if err := tx.Create(&collaborators).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateCollaborators, err)
		}

		task.Collaborators = collaborators
		return nil
	})
}

// FindByID finds a task by ID with its collaborators
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Preload("Collaborators").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.Stage != nil {
		query = query.Where("tasks.stage = ?", *filter.Stage)
	}
	if filter.Assignee != nil {
		assignmentSubQuery := r.db.Model(&models.TaskCollaborator{}).
			Select("1").
			Where("task_collaborators.task_id = tasks.id").
			Where("task_collaborators.username = ?", *filter.Assignee)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}

	var tasks []models.Task
	if err := query.Preload("Collaborators").Order("tasks.id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Mutate loads the task, applies fn and writes the result with its ledger entry
func (r *GormTaskRepository) Mutate(ctx context.Context, id uint64, fn TaskMutation) (*models.Task, error) {
	var result models.Task

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Preload("Collaborators").First(&task, id).Error; err != nil {
			return err
		}

		entry, err := fn(&task)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
			"stage":           task.Stage,
			"progress":        task.Progress,
			"completion_date": task.CompletionDate,
		}).Error; err != nil {
			return err
		}

		if entry != nil {
			entry.TaskID = id
			if err := tx.Create(entry).Error; err != nil {
				return fmt.Errorf("%w: %w", ErrAppendInteraction, err)
			}
		}

		return tx.Preload("Collaborators").First(&result, id).Error
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// ListCollaborators returns every assignment row
func (r *GormTaskRepository) ListCollaborators(ctx context.Context) ([]models.TaskCollaborator, error) {
	var collaborators []models.TaskCollaborator
	if err := r.db.WithContext(ctx).
		Order("task_id ASC").
		Order("username ASC").
		Find(&collaborators).Error; err != nil {
		return nil, err
	}
	return collaborators, nil
}

// Purge clears the board in dependency order
func (r *GormTaskRepository) Purge(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})

		if err := global.Delete(&models.TaskCollaborator{}).Error; err != nil {
			return fmt.Errorf("failed to purge task collaborators: %w", err)
		}
		if err := global.Delete(&models.TaskInteraction{}).Error; err != nil {
			return fmt.Errorf("failed to purge task interactions: %w", err)
		}
		if err := global.Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("failed to purge tasks: %w", err)
		}
		return nil
	})
}
