package services

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/kanban-board-api/internal/board"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/repository"
	"gorm.io/gorm"
)

// LedgerService appends to and reads the per-task interaction history.
type LedgerService struct {
	taskRepo        repository.TaskRepository
	interactionRepo repository.InteractionRepository
	maxEvidence     int64
	clock           Clock
}

func NewLedgerService(taskRepo repository.TaskRepository, interactionRepo repository.InteractionRepository, maxEvidence int64) *LedgerService {
	return &LedgerService{
		taskRepo:        taskRepo,
		interactionRepo: interactionRepo,
		maxEvidence:     maxEvidence,
		clock:           time.Now,
	}
}

// WithClock replaces the time source.
func (s *LedgerService) WithClock(clock Clock) *LedgerService {
	s.clock = clock
	return s
}

// RecordInput is a free-form ledger entry. Every field is optional.
type RecordInput struct {
	ActionKind        models.ActionKind
	Comment           *string
	Evidence          []byte
	ResultingStage    *models.Stage
	ResultingProgress *int
}

// Record appends an entry authored by actor. The task itself is not changed.
func (s *LedgerService) Record(ctx context.Context, actor models.Actor, taskID uint64, input RecordInput) (*models.TaskInteraction, error) {
	if input.ResultingStage != nil && !input.ResultingStage.Valid() {
		return nil, ErrInvalidStage
	}
	if p := input.ResultingProgress; p != nil && (*p < 0 || *p > 100) {
		return nil, ErrInvalidProgress
	}

	entry := &models.TaskInteraction{
		TaskID:            taskID,
		Username:          actor.Username,
		ActionKind:        input.ActionKind,
		Comment:           input.Comment,
		ResultingStage:    input.ResultingStage,
		ResultingProgress: input.ResultingProgress,
	}
	if entry.ActionKind == "" {
		entry.ActionKind = models.ActionCommentAndEvidence
	}

	if len(input.Evidence) > 0 {
		contentType, err := DetectEvidence(input.Evidence, s.maxEvidence)
		if err != nil {
			return nil, err
		}
		entry.Evidence = input.Evidence
		entry.EvidenceContentType = &contentType
	}

	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !board.CanMutate(actor, *task) {
		return nil, ErrTaskPermissionDenied
	}

	entry.Timestamp = s.clock.stamp()
	if err := s.interactionRepo.Create(ctx, entry); err != nil {
		return nil, storageError("append interaction", err)
	}
	return entry, nil
}

// ListByTask returns a task's history oldest first.
func (s *LedgerService) ListByTask(ctx context.Context, taskID uint64) ([]models.TaskInteraction, error) {
	if _, err := s.findTask(ctx, taskID); err != nil {
		return nil, err
	}

	entries, err := s.interactionRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, storageError("list interactions", err)
	}
	return entries, nil
}

// Latest returns the most recent entry of a task, or nil when it has none.
func (s *LedgerService) Latest(ctx context.Context, taskID uint64) (*models.TaskInteraction, error) {
	entries, err := s.ListByTask(ctx, taskID)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[len(entries)-1], nil
}

func (s *LedgerService) findTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storageError("find task", err)
	}
	return task, nil
}
