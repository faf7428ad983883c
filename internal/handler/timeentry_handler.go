package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

const dateLayout = "2006-01-02"

type TimeEntryHandler struct {
	entryRepo TimeEntryRepository
	taskRepo  TaskRepository
	access    accessChecker
}

func NewTimeEntryHandler(
	entryRepo TimeEntryRepository,
	taskRepo TaskRepository,
	projectRepo ProjectRepository,
	shareRepo ShareRepository,
) *TimeEntryHandler {
	return &TimeEntryHandler{
		entryRepo: entryRepo,
		taskRepo:  taskRepo,
		access:    accessChecker{projects: projectRepo, shares: shareRepo},
	}
}

type TimeEntryRequest struct {
	WorkDate string `json:"work_date" binding:"required"`
	Minutes  int    `json:"minutes" binding:"required,min=1,max=1440"`
	Note     string `json:"note"`
}

type TimeEntryResponse struct {
	ID       int64  `json:"id"`
	TaskID   int64  `json:"task_id"`
	UserID   int64  `json:"user_id"`
	WorkDate string `json:"work_date"`
	Minutes  int    `json:"minutes"`
	Note     string `json:"note"`
}

type TaskTimeResponse struct {
	Entries      []TimeEntryResponse `json:"entries"`
	TotalMinutes int                 `json:"total_minutes"`
}

type TimesheetResponse struct {
	From         string              `json:"from"`
	To           string              `json:"to"`
	Entries      []TimeEntryResponse `json:"entries"`
	TotalMinutes int                 `json:"total_minutes"`
}

func toTimeEntryResponse(e model.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:       e.ID,
		TaskID:   e.TaskID,
		UserID:   e.UserID,
		WorkDate: e.WorkDate.Format(dateLayout),
		Minutes:  e.Minutes,
		Note:     e.Note,
	}
}

func (h *TimeEntryHandler) loadTask(c *gin.Context, userID int64, role model.Role) (*model.Task, bool) {
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
// @Summary      Book time against a task
// @Tags         Time Tracking
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Task ID"
// @Param        request body TimeEntryRequest true "Time entry"
// @Success      201 {object} TimeEntryResponse
// @Router       /tasks/{id}/time-entries [post]
func (h *TimeEntryHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req TimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	workDate, err := time.Parse(dateLayout, req.WorkDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid work date format, expected YYYY-MM-DD"})
		return
	}

	task, ok := h.loadTask(c, userID, model.RoleViewer)
	if !ok {
		return
	}

	entry := &model.TimeEntry{
		TaskID:   task.ID,
		UserID:   userID,
		WorkDate: workDate,
		Minutes:  req.Minutes,
		Note:     req.Note,
	}
	if err := h.entryRepo.Create(c.Request.Context(), entry); err != nil {
		internalError(c, "Failed to create time entry", err)
		return
	}

	c.JSON(http.StatusCreated, toTimeEntryResponse(*entry))
}

// ListByTask godoc
// @Summary      List the time booked against a task
// @Tags         Time Tracking
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} TaskTimeResponse
// @Router       /tasks/{id}/time-entries [get]
func (h *TimeEntryHandler) ListByTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	task, ok := h.loadTask(c, userID, model.RoleViewer)
	if !ok {
		return
	}

	entries, err := h.entryRepo.ListByTask(c.Request.Context(), task.ID)
	if err != nil {
		internalError(c, "Failed to retrieve time entries", err)
		return
	}
	total, err := h.entryRepo.SumByTask(c.Request.Context(), task.ID)
	if err != nil {
		internalError(c, "Failed to sum time entries", err)
		return
	}

	resp := TaskTimeResponse{Entries: make([]TimeEntryResponse, 0, len(entries)), TotalMinutes: total}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toTimeEntryResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete one of the caller's time entries
// @Tags         Time Tracking
// @Security     BearerAuth
// @Param        id path int true "Time entry ID"
// @Success      200 {object} map[string]string
// @Router       /time-entries/{id} [delete]
func (h *TimeEntryHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	entryID, ok := paramID(c, "id", "time entry")
	if !ok {
		return
	}

	entry, err := h.entryRepo.GetByID(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, repository.ErrTimeEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Time entry not found"})
			return
		}
		internalError(c, "Failed to retrieve time entry", err)
		return
	}
	if entry.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete a time entry"})
		return
	}

	if err := h.entryRepo.Delete(c.Request.Context(), entryID); err != nil {
		internalError(c, "Failed to delete time entry", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Time entry deleted successfully"})
}

// Timesheet godoc
// @Summary      The caller's time entries between two dates
// @Description  Defaults to the current ISO week when from/to are omitted.
// @Tags         Time Tracking
// @Security     BearerAuth
// @Produce      json
// @Param        from query string false "YYYY-MM-DD"
// @Param        to query string false "YYYY-MM-DD"
// @Success      200 {object} TimesheetResponse
// @Router       /timesheet [get]
func (h *TimeEntryHandler) Timesheet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	from, to := weekBounds(time.Now().UTC())
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date, expected YYYY-MM-DD"})
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date, expected YYYY-MM-DD"})
			return
		}
		to = parsed
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return
	}

	entries, err := h.entryRepo.ListByUser(c.Request.Context(), userID, from, to)
	if err != nil {
		internalError(c, "Failed to retrieve timesheet", err)
		return
	}

	resp := TimesheetResponse{
		From:    from.Format(dateLayout),
		To:      to.Format(dateLayout),
		Entries: make([]TimeEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toTimeEntryResponse(e))
		resp.TotalMinutes += e.Minutes
	}
	c.JSON(http.StatusOK, resp)
}

// weekBounds returns the Monday and Sunday of the week containing t.
func weekBounds(t time.Time) (time.Time, time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}
