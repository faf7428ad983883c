package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetOwned(ctx context.Context, ownerID int64) ([]model.Project, error)
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id int64) error
}

type ShareRepository interface {
	Share(ctx context.Context, projectID, userID int64, role model.Role) error
	Remove(ctx context.Context, projectID, userID int64) error
	ListShares(ctx context.Context, projectID int64) ([]model.ProjectShare, error)
	ListSharedProjects(ctx context.Context, userID int64) ([]model.Project, error)
	CheckAccess(ctx context.Context, projectID, userID int64, requiredRole model.Role) (bool, error)
}

type TaskRepository interface {
	// Create inserts task at position at, or appends it when at is nil.
	Create(ctx context.Context, task *model.Task, at *int) error
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id int64) error
	UpdateSequence(ctx context.Context, taskID, projectID int64, newSequence int) ([]model.Task, error)
	AssignUser(ctx context.Context, taskID, userID int64) error
	UnassignUser(ctx context.Context, taskID int64) error
}

type TimeEntryRepository interface {
	Create(ctx context.Context, entry *model.TimeEntry) error
	GetByID(ctx context.Context, id int64) (*model.TimeEntry, error)
	ListByTask(ctx context.Context, taskID int64) ([]model.TimeEntry, error)
	ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]model.TimeEntry, error)
	SumByTask(ctx context.Context, taskID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

// TaskCache serves ordered project task lists and is told about every mutation.
type TaskCache interface {
	ListByProject(ctx context.Context, projectID int64) ([]model.Task, error)
	Evict(ctx context.Context, projectID int64)
}

type Deduper interface {
	Add(ctx context.Context, userID int64, key string) (bool, error)
	Remove(ctx context.Context, userID int64, key string) error
}

// accessChecker resolves a project and verifies the caller may use it with a role.
type accessChecker struct {
	projects ProjectRepository
	shares   ShareRepository
}

// check resolves the project and returns the status and message to answer with
// when access is denied. A non-nil error is a storage failure.
func (a accessChecker) check(ctx context.Context, projectID, userID int64, role model.Role) (*model.Project, int, string, error) {
	project, err := a.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, http.StatusInternalServerError, "Failed to retrieve project", err
	}
	if project == nil {
		return nil, http.StatusNotFound, "Project not found", nil
	}
	if project.OwnerID == userID {
		return project, http.StatusOK, "", nil
	}

	hasAccess, err := a.shares.CheckAccess(ctx, projectID, userID, role)
	if err != nil {
		return nil, http.StatusInternalServerError, "Failed to check access", err
	}
	if !hasAccess {
		return nil, http.StatusForbidden, "You don't have access to this project", nil
	}
	return project, http.StatusOK, "", nil
}

// authorize writes the error response itself and returns ok=false when access is denied.
func (a accessChecker) authorize(c *gin.Context, projectID, userID int64, role model.Role) (*model.Project, bool) {
	project, status, msg, err := a.check(c.Request.Context(), projectID, userID, role)
	if err != nil {
		internalError(c, msg, err)
		return nil, false
	}
	if project == nil {
		c.JSON(status, gin.H{"error": msg})
		return nil, false
	}
	return project, true
}

func currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return 0, false
	}
	return userID, true
}

func paramID(c *gin.Context, name, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID format"})
		return 0, false
	}
	return id, true
}

func internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	logger.WithRequestID(c.Request.Context(), zap.L()).Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
