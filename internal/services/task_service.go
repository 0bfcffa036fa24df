package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/kanban-board-api/internal/board"
	"github.com/yukikurage/kanban-board-api/internal/constants"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskPermissionDenied   = errors.New("user does not have permission to modify this task")
	ErrElevatedRoleRequired   = errors.New("an elevated role is required")
	ErrAdminRequired          = errors.New("only an admin can perform this action")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task lifecycle business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	authService *AuthService
	drafter     DraftGenerator
	clock       Clock
}

// NewTaskService creates a new TaskService. drafter may be nil.
func NewTaskService(taskRepo repository.TaskRepository, authService *AuthService, drafter DraftGenerator) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		authService: authService,
		drafter:     drafter,
		clock:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *TaskService) WithClock(clock Clock) *TaskService {
	s.clock = clock
	return s
}

// CreateTaskInput represents input for creating a task. Dates are YYYY-MM-DD.
type CreateTaskInput struct {
	Title        string
	Description  *string
	CreatedDate  string
	StartDate    string
	DueDate      string
	Priority     models.Priority
	Shift        models.Shift
	InitialStage models.Stage
	Assignees    []string
}

// SetStageInput moves a task to Stage. CompletionDate is only accepted for
// Done; Progress, when set, is stored alongside the move.
type SetStageInput struct {
	Stage          models.Stage
	CompletionDate string
	Progress       *int
}

// CreateTask validates input, provisions unknown assignees and stores the task.
// Nothing is written when validation fails.
func (s *TaskService) CreateTask(ctx context.Context, actor models.Actor, input CreateTaskInput) (*models.Task, error) {
	if !actor.IsElevated() {
		return nil, ErrElevatedRoleRequired
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len(title) > constants.MaxTitleLength {
		return nil, fmt.Errorf("%w (max %d)", ErrTitleTooLong, constants.MaxTitleLength)
	}

	assignees, err := normalizeAssignees(input.Assignees)
	if err != nil {
		return nil, err
	}

	createdDate := s.clock.today()
	if input.CreatedDate != "" {
		if createdDate, err = models.ParseDate(input.CreatedDate); err != nil {
			return nil, ErrInvalidDate
		}
	}
	startDate, err := optionalDate(input.StartDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := optionalDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}

	shift := input.Shift
	if shift == "" {
		shift = models.Shift1
	}
	if !shift.Valid() {
		return nil, ErrInvalidShift
	}

	stage := input.InitialStage
	if stage == "" {
		stage = models.StageTodo
	}
	if !stage.Valid() {
		return nil, ErrInvalidStage
	}
	if !stage.IsInitial() {
		return nil, ErrInvalidInitial
	}

	var description *string
	if input.Description != nil && strings.TrimSpace(*input.Description) != "" {
		description = input.Description
	}

	template, err := s.authService.ProvisionTemplate()
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		CreatedDate: createdDate,
		StartDate:   startDate,
		DueDate:     dueDate,
		Priority:    priority,
		Shift:       shift,
		Stage:       stage,
		Progress:    0,
		CreatedBy:   actor.Username,
	}

	if err := s.taskRepo.CreateWithCollaborators(ctx, task, assignees, template); err != nil {
		return nil, storageError("create task", err)
	}

	return s.GetTask(ctx, task.ID)
}

// GetTask retrieves a task with its collaborators.
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, storageError("find task", err)
	}
	return task, nil
}

// ListTasks returns every stored task matching filter.
func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, storageError("list tasks", err)
	}
	return tasks, nil
}

// SetProgress records a new completion percentage. Done tasks are frozen at 100.
func (s *TaskService) SetProgress(ctx context.Context, actor models.Actor, taskID uint64, progress int) (*models.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, ErrInvalidProgress
	}

	return s.mutate(ctx, actor, taskID, func(task *models.Task) (*models.TaskInteraction, error) {
		if task.Stage == models.StageDone {
			return nil, ErrTaskCompleted
		}
		task.Progress = progress

		return s.entry(actor, models.ActionProgressUpdate, task), nil
	})
}

// AdvanceToDone completes a task. An empty completionDate means today.
func (s *TaskService) AdvanceToDone(ctx context.Context, actor models.Actor, taskID uint64, completionDate string) (*models.Task, error) {
	return s.SetStage(ctx, actor, taskID, SetStageInput{
		Stage:          models.StageDone,
		CompletionDate: completionDate,
	})
}

// SetStage moves a task between columns. Moving to Done stamps the completion
// date and forces progress to 100. Any other stage clears the completion date.
func (s *TaskService) SetStage(ctx context.Context, actor models.Actor, taskID uint64, input SetStageInput) (*models.Task, error) {
	if !input.Stage.Valid() {
		return nil, ErrInvalidStage
	}
	if input.Progress != nil && (*input.Progress < 0 || *input.Progress > 100) {
		return nil, ErrInvalidProgress
	}

	var completion *models.Date
	if input.CompletionDate != "" {
		if input.Stage != models.StageDone {
			return nil, ErrCompletionDate
		}
		date, err := models.ParseDate(input.CompletionDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		completion = &date
	}
	if input.Stage == models.StageDone && input.Progress != nil && *input.Progress != 100 {
		return nil, ErrInvalidProgress
	}

	return s.mutate(ctx, actor, taskID, func(task *models.Task) (*models.TaskInteraction, error) {
		if !task.Stage.CanTransitionTo(input.Stage) {
			return nil, ErrInvalidTransition
		}

		kind := models.ActionStatusChange
		if input.Stage == models.StageDone {
			kind = models.ActionStatusChangeToDone
			switch {
			case completion != nil:
				task.CompletionDate = completion
			case task.CompletionDate == nil:
				task.CompletionDate = models.DatePtr(s.clock.today())
			}
			task.Progress = 100
		} else {
			task.CompletionDate = nil
			if input.Progress != nil {
				task.Progress = *input.Progress
			}
		}
		task.Stage = input.Stage

		return s.entry(actor, kind, task), nil
	})
}

// Purge deletes every task, assignment and ledger entry. Users are kept.
func (s *TaskService) Purge(ctx context.Context, actor models.Actor) error {
	if actor.Role != models.RoleAdmin {
		return ErrAdminRequired
	}
	if err := s.taskRepo.Purge(ctx); err != nil {
		return storageError("purge tasks", err)
	}
	return nil
}

// GenerateTasks uses AI to draft tasks from text
func (s *TaskService) GenerateTasks(ctx context.Context, actor models.Actor, text string) ([]TaskDraft, error) {
	if !actor.IsElevated() {
		return nil, ErrElevatedRoleRequired
	}
	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}

	today := s.clock.today()
	drafts, err := s.drafter.GenerateTaskDrafts(ctx, text, today)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	valid := make([]TaskDraft, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		if draft.Title == "" {
			continue
		}

		if draft.DueDate != nil {
			if due, err := models.ParseDate(draft.DueDate.String()); err != nil || due.Before(today) {
				draft.DueDate = nil
			}
		}
		if !draft.Priority.Valid() {
			draft.Priority = models.PriorityMedium
		}

		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	return valid, nil
}

func (s *TaskService) mutate(ctx context.Context, actor models.Actor, taskID uint64, fn repository.TaskMutation) (*models.Task, error) {
	task, err := s.taskRepo.Mutate(ctx, taskID, func(task *models.Task) (*models.TaskInteraction, error) {
		if !board.CanMutate(actor, *task) {
			return nil, ErrTaskPermissionDenied
		}
		return fn(task)
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrTaskNotFound
		case errors.Is(err, ErrTaskPermissionDenied), IsValidation(err):
			return nil, err
		}
		return nil, storageError("update task", err)
	}
	return task, nil
}

func (s *TaskService) entry(actor models.Actor, kind models.ActionKind, task *models.Task) *models.TaskInteraction {
	stage := task.Stage
	progress := task.Progress
	return &models.TaskInteraction{
		Username:          actor.Username,
		ActionKind:        kind,
		Timestamp:         s.clock.stamp(),
		ResultingStage:    &stage,
		ResultingProgress: &progress,
	}
}

func normalizeAssignees(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	result := make([]string, 0, len(raw))

	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if len(name) > constants.MaxUsernameLength {
			return nil, fmt.Errorf("%w (max %d)", ErrUsernameTooLong, constants.MaxUsernameLength)
		}
		if _, exists := seen[name]; exists {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}

	if len(result) == 0 {
		return nil, ErrNoAssignees
	}
	return result, nil
}

func optionalDate(raw string) (*models.Date, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &date, nil
}
