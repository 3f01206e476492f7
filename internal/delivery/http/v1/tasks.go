package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskman-dev/taskman/internal/models"
	"github.com/taskman-dev/taskman/internal/services"
)

type taskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	AssignedTo  string    `json:"assigned_to"`
	CreatedAt   time.Time `json:"created_at"`
}

func newTaskResponse(task models.TaskView) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		CreatedBy:   task.CreatedBy,
		AssignedTo:  task.AssignedTo,
		CreatedAt:   task.CreatedAt,
	}
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type dashboardResponse struct {
	Tasks         []taskResponse `json:"tasks"`
	Users         []userResponse `json:"users"`
	Statuses      []string       `json:"statuses"`
	CurrentStatus string         `json:"current_status"`
	CurrentUser   string         `json:"current_user"`
	Flash         string         `json:"flash,omitempty"`
}

func (h *handlerImpl) HandleDashboard(c *gin.Context) {
	if _, ok := userIDFromContext(c); !ok {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	filter := services.TaskFilter{
		Status:           c.Query("status"),
		AssigneeUsername: c.Query("user"),
	}

	tasks, err := h.tasks.List(c, filter)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	users, err := h.users.ListUsers(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list users")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	resp := dashboardResponse{
		Tasks:         make([]taskResponse, 0, len(tasks)),
		Users:         make([]userResponse, 0, len(users)),
		Statuses:      models.Statuses(),
		CurrentStatus: filter.Status,
		CurrentUser:   filter.AssigneeUsername,
		Flash:         popFlash(c),
	}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, newTaskResponse(task))
	}
	for _, user := range users {
		resp.Users = append(resp.Users, userResponse{
			ID:       user.ID,
			Username: user.Username,
		})
	}

	c.JSON(http.StatusOK, resp)
}

type createTaskRequest struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	AssignedTo  int64  `form:"assigned_to"`
	Status      string `form:"status"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		h.logger.Error().Msg("no user id found in context")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req createTaskRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		flashAndRedirect(c, "Title is required!", "/dashboard")
		return
	}

	_, err = h.tasks.Create(c, services.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		CreatedBy:   userID,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		switch {
		case errors.Is(err, services.ErrEmptyTitle):
			flashAndRedirect(c, "Title is required!", "/dashboard")
		case errors.Is(err, services.ErrInvalidTaskStatus):
			flashAndRedirect(c, "Invalid task status.", "/dashboard")
		default:
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	flashAndRedirect(c, "Task created successfully!", "/dashboard")
}

type updateTaskRequest struct {
	Status     string `form:"status"`
	AssignedTo int64  `form:"assigned_to"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("invalid task id")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var req updateTaskRequest
	err = c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	err = h.tasks.Update(c, services.UpdateTaskParams{
		ID:         taskID,
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to update task")
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			flashAndRedirect(c, "Task not found!", "/dashboard")
		case errors.Is(err, services.ErrInvalidTaskStatus):
			flashAndRedirect(c, "Invalid task status.", "/dashboard")
		default:
			c.AbortWithStatus(http.StatusInternalServerError)
		}
		return
	}

	flashAndRedirect(c, "Task updated successfully!", "/dashboard")
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("invalid task id")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	err = h.tasks.Delete(c, taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		if errors.Is(err, services.ErrTaskNotFound) {
			flashAndRedirect(c, "Task not found!", "/dashboard")
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	flashAndRedirect(c, "Task deleted successfully!", "/dashboard")
}
