package dto

import (
	"github.com/yukikurage/kanban-board-api/internal/board"
	"github.com/yukikurage/kanban-board-api/internal/models"
)

// BoardDTO is the three-column board
type BoardDTO struct {
	Filter     string    `json:"filter"`
	Assignees  []string  `json:"assignees"`
	Todo       []TaskDTO `json:"todo"`
	InProgress []TaskDTO `json:"in_progress"`
	Done       []TaskDTO `json:"done"`
}

// StatsDTO is the statistics report
type StatsDTO struct {
	Total               int                             `json:"total"`
	ByStage             map[models.Stage]int            `json:"by_stage"`
	ByPriority          map[models.Priority]int         `json:"by_priority"`
	PendingDue          map[board.DueBucket]int         `json:"pending_due"`
	CompletedByAssignee map[string]int                  `json:"completed_by_assignee"`
	ProgressByAssignee  map[string]map[models.Stage]int `json:"progress_by_assignee"`
	DueSoonDays         int                             `json:"due_soon_days"`
	Today               models.Date                     `json:"today"`
}

func ToBoardDTO(b board.Board, due DueClassifier) BoardDTO {
	return BoardDTO{
		Filter:     b.Filter,
		Assignees:  b.Assignees,
		Todo:       ToTaskDTOs(b.Todo, due),
		InProgress: ToTaskDTOs(b.InProgress, due),
		Done:       ToTaskDTOs(b.Done, due),
	}
}

func ToStatsDTO(s board.Stats, thresholds board.Thresholds, today models.Date) StatsDTO {
	return StatsDTO{
		Total:               s.Total,
		ByStage:             s.ByStage,
		ByPriority:          s.ByPriority,
		PendingDue:          s.PendingDue,
		CompletedByAssignee: s.CompletedByAssignee,
		ProgressByAssignee:  s.ProgressByAssignee,
		DueSoonDays:         thresholds.DueSoonDays,
		Today:               today,
	}
}
