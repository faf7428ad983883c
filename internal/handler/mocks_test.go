package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetOwned(ctx context.Context, ownerID int64) ([]model.Project, error) {
	args := m.Called(ctx, ownerID)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	args := m.Called(ctx, id)
	project := args.Get(0)
	if project == nil {
		return nil, args.Error(1)
	}
	return project.(*model.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *model.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockShareRepository struct {
	mock.Mock
}

func (m *MockShareRepository) Share(ctx context.Context, projectID, userID int64, role model.Role) error {
	args := m.Called(ctx, projectID, userID, role)
	return args.Error(0)
}

func (m *MockShareRepository) Remove(ctx context.Context, projectID, userID int64) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

func (m *MockShareRepository) ListShares(ctx context.Context, projectID int64) ([]model.ProjectShare, error) {
	args := m.Called(ctx, projectID)
	shares, _ := args.Get(0).([]model.ProjectShare)
	return shares, args.Error(1)
}

func (m *MockShareRepository) ListSharedProjects(ctx context.Context, userID int64) ([]model.Project, error) {
	args := m.Called(ctx, userID)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

func (m *MockShareRepository) CheckAccess(ctx context.Context, projectID, userID int64, requiredRole model.Role) (bool, error) {
	args := m.Called(ctx, projectID, userID, requiredRole)
	return args.Bool(0), args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task, at *int) error {
	args := m.Called(ctx, task, at)
	return args.Error(0)
}

func (m *MockTaskRepository) ListByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	args := m.Called(ctx, projectID)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	args := m.Called(ctx, id)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) UpdateSequence(ctx context.Context, taskID, projectID int64, newSequence int) ([]model.Task, error) {
	args := m.Called(ctx, taskID, projectID, newSequence)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskRepository) AssignUser(ctx context.Context, taskID, userID int64) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}

func (m *MockTaskRepository) UnassignUser(ctx context.Context, taskID int64) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

type MockTimeEntryRepository struct {
	mock.Mock
}

func (m *MockTimeEntryRepository) Create(ctx context.Context, entry *model.TimeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTimeEntryRepository) GetByID(ctx context.Context, id int64) (*model.TimeEntry, error) {
	args := m.Called(ctx, id)
	entry := args.Get(0)
	if entry == nil {
		return nil, args.Error(1)
	}
	return entry.(*model.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) ListByTask(ctx context.Context, taskID int64) ([]model.TimeEntry, error) {
	args := m.Called(ctx, taskID)
	entries, _ := args.Get(0).([]model.TimeEntry)
	return entries, args.Error(1)
}

func (m *MockTimeEntryRepository) ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]model.TimeEntry, error) {
	args := m.Called(ctx, userID, from, to)
	entries, _ := args.Get(0).([]model.TimeEntry)
	return entries, args.Error(1)
}

func (m *MockTimeEntryRepository) SumByTask(ctx context.Context, taskID int64) (int, error) {
	args := m.Called(ctx, taskID)
	return args.Int(0), args.Error(1)
}

func (m *MockTimeEntryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTaskCache struct {
	mock.Mock
}

func (m *MockTaskCache) ListByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	args := m.Called(ctx, projectID)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskCache) Evict(ctx context.Context, projectID int64) {
	m.Called(ctx, projectID)
}

type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) Add(ctx context.Context, userID int64, key string) (bool, error) {
	args := m.Called(ctx, userID, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeduper) Remove(ctx context.Context, userID int64, key string) error {
	args := m.Called(ctx, userID, key)
	return args.Error(0)
}

// asUser stands in for JWTAuthMiddleware.
func asUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func newRouter(userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(asUser(userID))
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}
