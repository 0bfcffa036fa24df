package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board-api/internal/dto"
	apierrors "github.com/yukikurage/kanban-board-api/internal/errors"
	"github.com/yukikurage/kanban-board-api/internal/middleware"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/repository"
	"github.com/yukikurage/kanban-board-api/internal/services"
)

type TaskHandler struct {
	taskService  *services.TaskService
	boardService *services.BoardService
}

func NewTaskHandler(taskService *services.TaskService, boardService *services.BoardService) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		boardService: boardService,
	}
}

// ListTasks returns every task, optionally narrowed by stage and assignee
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var filter repository.TaskFilter

	if raw := c.Query("stage"); raw != "" {
		stage, err := models.ParseStage(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid stage")
			return
		}
		filter.Stage = &stage
	}
	if assignee := strings.TrimSpace(c.Query("assignee")); assignee != "" {
		filter.Assignee = &assignee
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, h.boardService))
}

// GetTask returns the task loaded by RequireTaskAccess
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task, h.boardService))
}

// CreateTask creates a task and assigns it, provisioning unknown assignees
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title        string          `json:"title" binding:"required"`
		Description  *string         `json:"description"`
		CreatedDate  string          `json:"created_date"`
		StartDate    string          `json:"start_date"`
		DueDate      string          `json:"due_date"`
		Priority     models.Priority `json:"priority"`
		Shift        models.Shift    `json:"shift"`
		InitialStage models.Stage    `json:"initial_stage"`
		Assignees    []string        `json:"assignees" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), actor, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		CreatedDate:  req.CreatedDate,
		StartDate:    req.StartDate,
		DueDate:      req.DueDate,
		Priority:     req.Priority,
		Shift:        req.Shift,
		InitialStage: req.InitialStage,
		Assignees:    req.Assignees,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, h.boardService))
}

// UpdateProgress sets the completion percentage. The stage is left alone,
// so 100 on a Todo or InProgress task does not complete it. Done tasks are
// frozen at 100 and answer 409 INVALID_TRANSITION.
func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	actor, task, ok := actorAndTask(c)
	if !ok {
		return
	}

	type UpdateProgressRequest struct {
		Progress *int `json:"progress" binding:"required"`
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.taskService.SetProgress(c.Request.Context(), actor, task.ID, *req.Progress)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated, h.boardService))
}

// CompleteTask moves a task to Done. The body is optional.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	actor, task, ok := actorAndTask(c)
	if !ok {
		return
	}

	type CompleteTaskRequest struct {
		CompletionDate string `json:"completion_date"`
	}

	var req CompleteTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	updated, err := h.taskService.AdvanceToDone(c.Request.Context(), actor, task.ID, req.CompletionDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated, h.boardService))
}

// UpdateStage moves a task to another column
func (h *TaskHandler) UpdateStage(c *gin.Context) {
	actor, task, ok := actorAndTask(c)
	if !ok {
		return
	}

	type UpdateStageRequest struct {
		Stage          models.Stage `json:"stage" binding:"required"`
		CompletionDate string       `json:"completion_date"`
		Progress       *int         `json:"progress"`
	}

	var req UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.taskService.SetStage(c.Request.Context(), actor, task.ID, services.SetStageInput{
		Stage:          req.Stage,
		CompletionDate: req.CompletionDate,
		Progress:       req.Progress,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated, h.boardService))
}

// GenerateTasks drafts task suggestions from text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), actor, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskDraftListResponse{Drafts: drafts})
}

func actorAndTask(c *gin.Context) (models.Actor, models.Task, bool) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return models.Actor{}, models.Task{}, false
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return models.Actor{}, models.Task{}, false
	}

	return actor, task, true
}
