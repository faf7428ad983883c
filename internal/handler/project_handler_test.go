package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskboard/internal/handler"
	"taskboard/internal/model"
)

func setupProjectTest(userID int64) (*gin.Engine, *MockProjectRepository, *MockShareRepository, *MockUserRepository) {
	r := newRouter(userID)
	projects := new(MockProjectRepository)
	shares := new(MockShareRepository)
	users := new(MockUserRepository)

	ph := handler.NewProjectHandler(projects, shares)
	sh := handler.NewShareHandler(projects, users, shares)

	r.POST("/projects", ph.Create)
	r.GET("/projects", ph.GetAll)
	r.GET("/projects/:id", ph.GetByID)
	r.PUT("/projects/:id", ph.Update)
	r.DELETE("/projects/:id", ph.Delete)
	r.POST("/projects/:id/share", sh.ShareProject)
	r.DELETE("/projects/:id/share/:user_id", sh.RemoveShare)
	r.GET("/projects/:id/share", sh.GetProjectShares)
	r.GET("/shared-projects", sh.GetSharedProjects)
	return r, projects, shares, users
}

func TestCreateProject(t *testing.T) {
	r, projects, _, _ := setupProjectTest(1)
	projects.On("Create", mock.Anything, mock.AnythingOfType("*model.Project")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Project).ID = 10 }).
		Return(nil)

	resp := doJSON(r, "POST", "/projects", handler.ProjectRequest{Title: "Roadmap"})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body handler.ProjectResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, int64(10), body.ID)
	assert.True(t, body.IsOwner)
}

func TestGetProject_SharedViewer(t *testing.T) {
	r, projects, shares, _ := setupProjectTest(2)
	projects.On("GetByID", mock.Anything, int64(10)).Return(&model.Project{ID: 10, OwnerID: 1, Title: "Roadmap"}, nil)
	shares.On("CheckAccess", mock.Anything, int64(10), int64(2), model.RoleViewer).Return(true, nil)

	resp := doJSON(r, "GET", "/projects/10", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	var body handler.ProjectResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.False(t, body.IsOwner)
}

func TestUpdateProject_ViewerForbidden(t *testing.T) {
	r, projects, shares, _ := setupProjectTest(2)
	projects.On("GetByID", mock.Anything, int64(10)).Return(&model.Project{ID: 10, OwnerID: 1}, nil)
	shares.On("CheckAccess", mock.Anything, int64(10), int64(2), model.RoleEditor).Return(false, nil)

	resp := doJSON(r, "PUT", "/projects/10", handler.ProjectRequest{Title: "New"})

	assert.Equal(t, http.StatusForbidden, resp.Code)
	projects.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteProject_OwnerOnly(t *testing.T) {
	r, projects, _, _ := setupProjectTest(2)
	projects.On("GetByID", mock.Anything, int64(10)).Return(&model.Project{ID: 10, OwnerID: 1}, nil)

	resp := doJSON(r, "DELETE", "/projects/10", nil)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	projects.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestShareProject(t *testing.T) {
	r, projects, shares, users := setupProjectTest(1)
	projects.On("GetByID", mock.Anything, int64(10)).Return(&model.Project{ID: 10, OwnerID: 1}, nil)
	users.On("FindByEmail", mock.Anything, "bob@example.com").Return(&model.User{ID: 2, Email: "bob@example.com", Name: "Bob"}, nil)
	shares.On("Share", mock.Anything, int64(10), int64(2), model.RoleEditor).Return(nil)

	resp := doJSON(r, "POST", "/projects/10/share", handler.ShareProjectRequest{Email: "bob@example.com", Role: "editor"})

	assert.Equal(t, http.StatusOK, resp.Code)
	shares.AssertExpectations(t)
}

func TestShareProject_WithSelf(t *testing.T) {
	r, projects, _, users := setupProjectTest(1)
	projects.On("GetByID", mock.Anything, int64(10)).Return(&model.Project{ID: 10, OwnerID: 1}, nil)
	users.On("FindByEmail", mock.Anything, "me@example.com").Return(&model.User{ID: 1}, nil)

	resp := doJSON(r, "POST", "/projects/10/share", handler.ShareProjectRequest{Email: "me@example.com", Role: "viewer"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestShareProject_InvalidRole(t *testing.T) {
	r, projects, _, _ := setupProjectTest(1)
	projects.On("GetByID", mock.Anything, int64(10)).Return(&model.Project{ID: 10, OwnerID: 1}, nil)

	resp := doJSON(r, "POST", "/projects/10/share", map[string]string{"email": "bob@example.com", "role": "admin"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetProjectShares_IncludesOwner(t *testing.T) {
	r, projects, shares, users := setupProjectTest(1)
	projects.On("GetByID", mock.Anything, int64(10)).Return(&model.Project{ID: 10, OwnerID: 1}, nil)
	users.On("GetByID", mock.Anything, int64(1)).Return(&model.User{ID: 1, Name: "Ann"}, nil)
	shares.On("ListShares", mock.Anything, int64(10)).Return([]model.ProjectShare{
		{ProjectID: 10, UserID: 2, Role: model.RoleViewer, User: model.User{ID: 2, Name: "Bob"}},
	}, nil)

	resp := doJSON(r, "GET", "/projects/10/share", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	var body []handler.ShareResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.True(t, body[0].IsOwner)
	assert.Equal(t, "viewer", body[1].Role)
}
