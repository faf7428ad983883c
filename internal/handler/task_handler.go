package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type TaskHandler struct {
	taskRepo TaskRepository
	userRepo UserRepository
	cache    TaskCache
	dedup    Deduper
	access   accessChecker
}

func NewTaskHandler(
	taskRepo TaskRepository,
	projectRepo ProjectRepository,
	shareRepo ShareRepository,
	userRepo UserRepository,
	cache TaskCache,
	dedup Deduper,
) *TaskHandler {
	return &TaskHandler{
		taskRepo: taskRepo,
		userRepo: userRepo,
		cache:    cache,
		dedup:    dedup,
		access:   accessChecker{projects: projectRepo, shares: shareRepo},
	}
}

// TaskRequest creates a task. Sequence is optional; without it the task is appended.
type TaskRequest struct {
	ProjectID       int64      `json:"project_id" binding:"required,min=1"`
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	DueDate         *time.Time `json:"due_date"`
	EstimateMinutes int        `json:"estimate_minutes" binding:"min=0"`
	Sequence        *int       `json:"sequence" binding:"omitempty,min=0"`
}

type TaskUpdateRequest struct {
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	DueDate         *time.Time `json:"due_date"`
	EstimateMinutes int        `json:"estimate_minutes" binding:"min=0"`
}

type TaskAssignRequest struct {
	UserID int64 `json:"user_id" binding:"required,min=1"`
}

type TaskResponse struct {
	ID              int64   `json:"id"`
	ProjectID       int64   `json:"project_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	AssignedTo      *int64  `json:"assigned_to,omitempty"`
	CreatedBy       int64   `json:"created_by"`
	DueDate         *string `json:"due_date,omitempty"`
	Sequence        int     `json:"sequence"`
	EstimateMinutes int     `json:"estimate_minutes"`
}

func toTaskResponse(t model.Task) TaskResponse {
	return TaskResponse{
		ID:              t.ID,
		ProjectID:       t.ProjectID,
		Title:           t.Title,
		Description:     t.Description,
		AssignedTo:      t.AssignedTo,
		CreatedBy:       t.CreatedBy,
		DueDate:         formatDate(t.DueDate),
		Sequence:        t.Sequence,
		EstimateMinutes: t.EstimateMinutes,
	}
}

// loadTask resolves the task in the URL and checks the caller's role on its project.
func (h *TaskHandler) loadTask(c *gin.Context, userID int64, role model.Role) (*model.Task, bool) {
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return nil, false
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return nil, false
		}
		internalError(c, "Failed to retrieve task", err)
		return nil, false
	}

	if _, ok := h.access.authorize(c, task.ProjectID, userID, role); !ok {
		return nil, false
	}
	return task, true
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body TaskRequest true "Task"
// @Success      201 {object} TaskResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, ok := h.access.authorize(c, req.ProjectID, userID, model.RoleEditor); !ok {
		return
	}

	task := &model.Task{
		ProjectID:       req.ProjectID,
		Title:           req.Title,
		Description:     req.Description,
		CreatedBy:       userID,
		DueDate:         req.DueDate,
		EstimateMinutes: req.EstimateMinutes,
	}
	if err := h.taskRepo.Create(c.Request.Context(), task, req.Sequence); err != nil {
		switch {
		case errors.Is(err, repository.ErrSequenceOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sequence out of range"})
		case errors.Is(err, repository.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		default:
			internalError(c, "Failed to create task", err)
		}
		return
	}
	h.cache.Evict(c.Request.Context(), task.ProjectID)

	c.JSON(http.StatusCreated, toTaskResponse(*task))
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} TaskResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	task, ok := h.loadTask(c, userID, model.RoleViewer)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// GetByProjectID godoc
// @Summary      List a project's tasks in sequence order
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Project ID"
// @Success      200 {array} TaskResponse
// @Router       /projects/{id}/tasks [get]
func (h *TaskHandler) GetByProjectID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id", "project")
	if !ok {
		return
	}
	if _, ok := h.access.authorize(c, projectID, userID, model.RoleViewer); !ok {
		return
	}

	tasks, err := h.cache.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		internalError(c, "Failed to retrieve tasks", err)
		return
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a task's details
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Task ID"
// @Param        request body TaskUpdateRequest true "Task"
// @Success      200 {object} TaskResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, ok := h.loadTask(c, userID, model.RoleEditor)
	if !ok {
		return
	}

	task.Title = req.Title
	task.Description = req.Description
	task.DueDate = req.DueDate
	task.EstimateMinutes = req.EstimateMinutes
	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		internalError(c, "Failed to update task", err)
		return
	}
	h.cache.Evict(c.Request.Context(), task.ProjectID)

	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Success      200 {object} map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	task, ok := h.loadTask(c, userID, model.RoleEditor)
	if !ok {
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), task.ID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		internalError(c, "Failed to delete task", err)
		return
	}
	h.cache.Evict(c.Request.Context(), task.ProjectID)

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// AssignUser godoc
// @Summary      Assign a user to a task
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Param        id path int true "Task ID"
// @Param        request body TaskAssignRequest true "Assignee"
// @Success      200 {object} map[string]string
// @Router       /tasks/{id}/assign [post]
func (h *TaskHandler) AssignUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req TaskAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, ok := h.loadTask(c, userID, model.RoleEditor)
	if !ok {
		return
	}

	assignee, err := h.userRepo.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		internalError(c, "Failed to retrieve user", err)
		return
	}
	if assignee == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	project, _, _, err := h.access.check(c.Request.Context(), task.ProjectID, assignee.ID, model.RoleViewer)
	if err != nil {
		internalError(c, "Failed to check access", err)
		return
	}
	if project == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User has no access to this project"})
		return
	}

	if err := h.taskRepo.AssignUser(c.Request.Context(), task.ID, assignee.ID); err != nil {
		internalError(c, "Failed to assign user", err)
		return
	}
	h.cache.Evict(c.Request.Context(), task.ProjectID)

	c.JSON(http.StatusOK, gin.H{"message": "User assigned successfully"})
}

// UnassignUser godoc
// @Summary      Remove the assignee of a task
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Success      200 {object} map[string]string
// @Router       /tasks/{id}/assign [delete]
func (h *TaskHandler) UnassignUser(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	task, ok := h.loadTask(c, userID, model.RoleEditor)
	if !ok {
		return
	}

	if err := h.taskRepo.UnassignUser(c.Request.Context(), task.ID); err != nil {
		internalError(c, "Failed to unassign user", err)
		return
	}
	h.cache.Evict(c.Request.Context(), task.ProjectID)

	c.JSON(http.StatusOK, gin.H{"message": "User unassigned successfully"})
}
