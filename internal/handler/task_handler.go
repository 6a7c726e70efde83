package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"notes/internal/model"
	"notes/internal/repository"
	"notes/internal/service"
)

type TaskHandler struct {
	service service.TaskServiceInterface
	log     *slog.Logger
}

func NewTaskHandler(svc service.TaskServiceInterface, log *slog.Logger) *TaskHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TaskHandler{service: svc, log: log}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string             `json:"message"`
	Error   string             `json:"error,omitempty"`
	Fields  []model.FieldError `json:"fields,omitempty"`
}

// MessageResponse confirms an operation without returning a resource
type MessageResponse struct {
	Message string `json:"message"`
}

// Register mounts the task routes on the given group
func (h *TaskHandler) Register(group *gin.RouterGroup) {
	tasks := group.Group("/tasks")
	{
		tasks.GET("", h.List)
		tasks.POST("", h.Create)
		tasks.GET("/report", h.Report)
		tasks.GET("/:id", h.GetByID)
		tasks.PUT("/:id", h.Update)
		tasks.DELETE("/:id", h.Delete)
	}
}

// List godoc
// @Summary      List tasks
// @Description  Returns every task, most recently created first
// @Tags         Tasks
// @Produce      json
// @Success      200  {array}   model.Task
// @Failure      500  {object}  ErrorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.service.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      model.Draft  true  "Task draft"
// @Success      201   {object}  model.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var draft model.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.invalidBody(c, err)
		return
	}

	task, err := h.service.Create(c.Request.Context(), draft)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  model.Task
// @Failure      404  {object}  ErrorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	task, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary      Update a task
// @Description  Changes only the fields present in the body
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Task ID"
// @Param        task  body      model.Patch  true  "Fields to change"
// @Success      200   {object}  model.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var patch model.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.invalidBody(c, err)
		return
	}

	task, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// Report godoc
// @Summary      Task statistics
// @Description  Total, pending, completed, important and overdue counts
// @Tags         Tasks
// @Produce      json
// @Success      200  {object}  report.Stats
// @Failure      500  {object}  ErrorResponse
// @Router       /api/tasks/report [get]
func (h *TaskHandler) Report(c *gin.Context) {
	stats, err := h.service.Report(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *TaskHandler) invalidBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid data", Error: err.Error()})
}

// respondError maps service errors onto HTTP outcomes
func (h *TaskHandler) respondError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Task not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid data",
			Error:   verr.Error(),
			Fields:  verr.Fields,
		})
	default:
		h.log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server Error"})
	}
}
