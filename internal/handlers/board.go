package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board-api/internal/dto"
	apierrors "github.com/yukikurage/kanban-board-api/internal/errors"
	"github.com/yukikurage/kanban-board-api/internal/middleware"
	"github.com/yukikurage/kanban-board-api/internal/services"
)

type BoardHandler struct {
	boardService *services.BoardService
}

func NewBoardHandler(boardService *services.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
	}
}

// GetBoard returns the three-column view. ?filter= selects an assignee or
// "(All)"; without it collaborators see their own tasks.
func (h *BoardHandler) GetBoard(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	view, err := h.boardService.Board(c.Request.Context(), actor, c.Query("filter"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(view, h.boardService))
}

// GetStats returns the aggregate report
func (h *BoardHandler) GetStats(c *gin.Context) {
	stats, err := h.boardService.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatsDTO(stats, h.boardService.Thresholds(), h.boardService.Today()))
}
