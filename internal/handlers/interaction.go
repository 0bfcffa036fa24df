package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board-api/internal/constants"
	"github.com/yukikurage/kanban-board-api/internal/dto"
	apierrors "github.com/yukikurage/kanban-board-api/internal/errors"
	"github.com/yukikurage/kanban-board-api/internal/middleware"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/services"
)

type InteractionHandler struct {
	ledgerService *services.LedgerService
	maxEvidence   int64
}

func NewInteractionHandler(ledgerService *services.LedgerService, maxEvidence int64) *InteractionHandler {
	return &InteractionHandler{
		ledgerService: ledgerService,
		maxEvidence:   maxEvidence,
	}
}

// ListInteractions returns the ledger of a task oldest first
func (h *InteractionHandler) ListInteractions(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	entries, err := h.ledgerService.ListByTask(c.Request.Context(), task.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInteractionListResponse(entries))
}

// RecordInteraction appends a comment and/or an evidence image. The request is
// multipart/form-data with optional fields comment, action_kind,
// resulting_stage, resulting_progress and an optional file under "evidence".
func (h *InteractionHandler) RecordInteraction(c *gin.Context) {
	actor, task, ok := actorAndTask(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxEvidence+constants.MultipartOverheadBytes)
	if err := c.Request.ParseMultipartForm(h.maxEvidence); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondServiceError(c, services.ErrEvidenceTooLarge)
			return
		}
		apierrors.BadRequest(c, "Invalid multipart body")
		return
	}

	input := services.RecordInput{
		ActionKind: models.ActionKind(c.PostForm("action_kind")),
	}
	if comment, exists := c.GetPostForm("comment"); exists {
		input.Comment = &comment
	}
	if raw := c.PostForm("resulting_stage"); raw != "" {
		stage := models.Stage(raw)
		input.ResultingStage = &stage
	}
	if raw := c.PostForm("resulting_progress"); raw != "" {
		progress, err := strconv.Atoi(raw)
		if err != nil {
			apierrors.BadRequest(c, "resulting_progress must be an integer")
			return
		}
		input.ResultingProgress = &progress
	}

	evidence, err := h.readEvidence(c)
	if err != nil {
		if errors.Is(err, services.ErrEvidenceTooLarge) {
			respondServiceError(c, err)
			return
		}
		apierrors.BadRequest(c, "Invalid evidence upload")
		return
	}
	input.Evidence = evidence

	entry, err := h.ledgerService.Record(c.Request.Context(), actor, task.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInteractionDTO(*entry))
}

func (h *InteractionHandler) readEvidence(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile(constants.EvidenceFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if header.Size > h.maxEvidence {
		return nil, services.ErrEvidenceTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, h.maxEvidence+1))
}
