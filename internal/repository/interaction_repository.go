package repository

import (
	"context"

	"github.com/yukikurage/kanban-board-api/internal/database"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"gorm.io/gorm"
)

// GormInteractionRepository is a GORM implementation of InteractionRepository
type GormInteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new InteractionRepository
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &GormInteractionRepository{db: db}
}

// Create appends an interaction
func (r *GormInteractionRepository) Create(ctx context.Context, entry *models.TaskInteraction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByTask returns the ledger of a task
func (r *GormInteractionRepository) ListByTask(ctx context.Context, taskID uint64) ([]models.TaskInteraction, error) {
	var entries []models.TaskInteraction
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Scopes(database.LedgerOrder).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListAll returns every interaction
func (r *GormInteractionRepository) ListAll(ctx context.Context) ([]models.TaskInteraction, error) {
	var entries []models.TaskInteraction
	if err := r.db.WithContext(ctx).
		Order("task_id ASC").
		Scopes(database.LedgerOrder).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
