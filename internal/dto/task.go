package dto

import (
	"time"

	"github.com/yukikurage/kanban-board-api/internal/board"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/services"
)

// DueClassifier computes the date-relative fields of a task card.
type DueClassifier interface {
	DueBucket(task models.Task) board.DueBucket
	CardColor(task models.Task) board.CardColor
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64          `json:"id"`
	Title          string          `json:"title"`
	Description    *string         `json:"description"`
	CreatedDate    models.Date     `json:"created_date"`
	StartDate      *models.Date    `json:"start_date"`
	DueDate        *models.Date    `json:"due_date"`
	Priority       models.Priority `json:"priority"`
	Shift          models.Shift    `json:"shift"`
	Stage          models.Stage    `json:"stage"`
	CompletionDate *models.Date    `json:"completion_date"`
	Progress       int             `json:"progress"`
	CreatedBy      string          `json:"created_by"`
	Assignees      []string        `json:"assignees"`
	DueBucket      board.DueBucket `json:"due_bucket"`
	CardColor      board.CardColor `json:"card_color"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TaskListResponse represents a list of tasks
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	Total int       `json:"total"`
}

// TaskDraftListResponse wraps AI generated drafts
type TaskDraftListResponse struct {
	Drafts []services.TaskDraft `json:"drafts"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task, due DueClassifier) TaskDTO {
	return TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		CreatedDate:    task.CreatedDate,
		StartDate:      task.StartDate,
		DueDate:        task.DueDate,
		Priority:       task.Priority,
		Shift:          task.Shift,
		Stage:          task.Stage,
		CompletionDate: task.CompletionDate,
		Progress:       task.Progress,
		CreatedBy:      task.CreatedBy,
		Assignees:      task.Assignees(),
		DueBucket:      due.DueBucket(task),
		CardColor:      due.CardColor(task),
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task, due DueClassifier) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, due)
	}
	return items
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, due DueClassifier) TaskListResponse {
	return TaskListResponse{
		Tasks: ToTaskDTOs(tasks, due),
		Total: len(tasks),
	}
}
