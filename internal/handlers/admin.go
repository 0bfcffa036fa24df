package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-board-api/internal/dto"
	apierrors "github.com/yukikurage/kanban-board-api/internal/errors"
	"github.com/yukikurage/kanban-board-api/internal/export"
	"github.com/yukikurage/kanban-board-api/internal/middleware"
	"github.com/yukikurage/kanban-board-api/internal/models"
	"github.com/yukikurage/kanban-board-api/internal/services"
	"github.com/yukikurage/kanban-board-api/internal/utils"
)

// AdminHandler serves user management and maintenance endpoints.
type AdminHandler struct {
	authService   *services.AuthService
	taskService   *services.TaskService
	exportService *services.ExportService
}

func NewAdminHandler(authService *services.AuthService, taskService *services.TaskService, exportService *services.ExportService) *AdminHandler {
	return &AdminHandler{
		authService:   authService,
		taskService:   taskService,
		exportService: exportService,
	}
}

// ListUsers returns a page of users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.authService.ListUsers(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params, total))
}

// CreateUser creates a user with any role
func (h *AdminHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Username string      `json:"username" binding:"required,max=100"`
		Password string      `json:"password" binding:"required"`
		Role     models.Role `json:"role" binding:"required"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), services.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ResetPassword sets a temporary password for a user, who must change it at
// the next login. With "generate": true the password is created here and
// returned once.
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Password string `json:"password"`
		Generate bool   `json:"generate"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	password := req.Password
	if req.Generate {
		generated, err := utils.GenerateTemporaryPassword()
		if err != nil {
			apierrors.InternalError(c, "Failed to generate password")
			return
		}
		password = generated
	}
	if password == "" {
		apierrors.BadRequest(c, "password or generate is required")
		return
	}

	username := c.Param("username")
	if err := h.authService.ResetPassword(c.Request.Context(), username, password); err != nil {
		respondServiceError(c, err)
		return
	}

	resp := gin.H{
		"username": username,
		"message":  "Password reset",
	}
	if req.Generate {
		resp["temporary_password"] = password
	}
	c.JSON(http.StatusOK, resp)
}

// PurgeTasks deletes all tasks, assignments and interactions
func (h *AdminHandler) PurgeTasks(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.taskService.Purge(c.Request.Context(), actor); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All tasks, assignments and interactions were deleted",
	})
}

// Export streams a dump of every relation. ?format=xlsx (default) gives one
// worksheet per relation; ?format=pdf gives a printable report.
func (h *AdminHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		apierrors.BadRequest(c, "format must be xlsx or pdf")
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.Write(c.Request.Context(), format, &buf); err != nil {
		respondServiceError(c, err)
		return
	}

	filename := format.Filename(models.DateOf(time.Now()))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
