package services

import (
	"context"
	"time"

	"github.com/yukikurage/kanban-board-api/internal/board"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/repository"
)

// BoardService loads tasks and hands them to the visibility engine.
type BoardService struct {
	taskRepo   repository.TaskRepository
	thresholds board.Thresholds
	clock      Clock
}

func NewBoardService(taskRepo repository.TaskRepository, thresholds board.Thresholds) *BoardService {
	return &BoardService{
		taskRepo:   taskRepo,
		thresholds: thresholds,
		clock:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *BoardService) WithClock(clock Clock) *BoardService {
	s.clock = clock
	return s
}

func (s *BoardService) Thresholds() board.Thresholds { return s.thresholds }

func (s *BoardService) Today() models.Date { return s.clock.today() }

// Board returns the column view for actor under filter.
func (s *BoardService) Board(ctx context.Context, actor models.Actor, filter string) (board.Board, error) {
	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{})
	if err != nil {
		return board.Board{}, storageError("list tasks", err)
	}
	return board.View(actor, filter, tasks), nil
}

// Stats aggregates every stored task.
func (s *BoardService) Stats(ctx context.Context) (board.Stats, error) {
	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{})
	if err != nil {
		return board.Stats{}, storageError("list tasks", err)
	}
	return board.Aggregate(tasks, s.Today(), s.thresholds), nil
}

// DueBucket classifies task relative to today.
func (s *BoardService) DueBucket(task models.Task) board.DueBucket {
	return board.BucketFor(task, s.Today(), s.thresholds.DueSoonDays)
}

// CardColor is the display colour of task relative to today.
func (s *BoardService) CardColor(task models.Task) board.CardColor {
	return board.CardColorFor(task, s.Today(), s.thresholds.CardWarningDays)
}
