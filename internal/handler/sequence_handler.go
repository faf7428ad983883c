package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// IdempotencyKeyHeader lets a client mark a sequence update so a re-sent request is
// not applied twice.
const IdempotencyKeyHeader = "Idempotency-Key"

type SequenceRequest struct {
	ProjectID int64 `json:"project_id" binding:"required,min=1"`
	Sequence  *int  `json:"sequence" binding:"required"`
}

type SequenceRow struct {
	TaskID   int64  `json:"task_id"`
	Sequence int    `json:"sequence"`
	Title    string `json:"title"`
}

type SequenceResponse struct {
	Success           bool          `json:"success"`
	UpdatedCollection []SequenceRow `json:"updated_collection,omitempty"`
	Error             string        `json:"error,omitempty"`
}

func sequenceFailure(c *gin.Context, status int, msg string) {
	c.JSON(status, SequenceResponse{Success: false, Error: msg})
}

// UpdateSequence godoc
// @Summary      Move a task to a new position in its project
// @Description  Renumbers the project's tasks to 0..n-1 and returns the refreshed order.
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Task ID"
// @Param        Idempotency-Key header string false "Deduplicates re-sent requests"
// @Param        request body SequenceRequest true "Target position"
// @Success      200 {object} SequenceResponse
// @Failure      400 {object} SequenceResponse
// @Failure      403 {object} SequenceResponse
// @Failure      404 {object} SequenceResponse
// @Router       /tasks/{id}/sequence [put]
func (h *TaskHandler) UpdateSequence(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id", "task")
	if !ok {
		return
	}

	var req SequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sequenceFailure(c, http.StatusBadRequest, "Invalid request")
		return
	}

	ctx := c.Request.Context()

	project, status, msg, err := h.access.check(ctx, req.ProjectID, userID, model.RoleEditor)
	if err != nil {
		internalSequenceError(c, msg, err)
		return
	}
	if project == nil {
		sequenceFailure(c, status, msg)
		return
	}

	key := c.GetHeader(IdempotencyKeyHeader)
	if key != "" {
		added, err := h.dedup.Add(ctx, userID, key)
		if err != nil {
			internalSequenceError(c, "Failed to record idempotency key", err)
			return
		}
		if !added {
			// The first request may already have moved the task; answer with the
			// current order so a re-sent request does not look like a refusal.
			tasks, err := h.taskRepo.ListByProject(ctx, project.ID)
			if err != nil {
				internalSequenceError(c, "Failed to fetch tasks", err)
				return
			}
			c.JSON(http.StatusOK, SequenceResponse{Success: true, UpdatedCollection: sequenceRows(tasks)})
			return
		}
	}

	tasks, err := h.taskRepo.UpdateSequence(ctx, taskID, project.ID, *req.Sequence)
	if err != nil {
		if key != "" {
			_ = h.dedup.Remove(ctx, userID, key)
		}
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			sequenceFailure(c, http.StatusNotFound, "Task not found")
		case errors.Is(err, repository.ErrTaskProjectMismatch):
			sequenceFailure(c, http.StatusBadRequest, "Task does not belong to this project")
		case errors.Is(err, repository.ErrSequenceOutOfRange):
			sequenceFailure(c, http.StatusBadRequest, "Sequence out of range")
		default:
			internalSequenceError(c, "Failed to update sequence", err)
		}
		return
	}
	h.cache.Evict(ctx, project.ID)

	c.JSON(http.StatusOK, SequenceResponse{Success: true, UpdatedCollection: sequenceRows(tasks)})
}

func sequenceRows(tasks []model.Task) []SequenceRow {
	rows := make([]SequenceRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, SequenceRow{TaskID: t.ID, Sequence: t.Sequence, Title: t.Title})
	}
	return rows
}

func internalSequenceError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	logger.WithRequestID(c.Request.Context(), zap.L()).Error(msg, zap.Error(err))
	sequenceFailure(c, http.StatusInternalServerError, msg)
}
