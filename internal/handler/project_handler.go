package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
)

type ProjectHandler struct {
	projectRepo ProjectRepository
	access      accessChecker
}

func NewProjectHandler(projectRepo ProjectRepository, shareRepo ShareRepository) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		access:      accessChecker{projects: projectRepo, shares: shareRepo},
	}
}

type ProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type ProjectResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     int64  `json:"owner_id"`
	IsOwner     bool   `json:"is_owner"`
}

func toProjectResponse(p model.Project, userID int64) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		IsOwner:     p.OwnerID == userID,
	}
}

// Create godoc
// @Summary      Create a project
// @Tags         Projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body ProjectRequest true "Project"
// @Success      201 {object} ProjectResponse
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project := &model.Project{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     userID,
	}
	if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
		internalError(c, "Failed to create project", err)
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(*project, userID))
}

// GetAll godoc
// @Summary      List owned projects
// @Tags         Projects
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} ProjectResponse
// @Router       /projects [get]
func (h *ProjectHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.projectRepo.GetOwned(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "Failed to retrieve projects", err)
		return
	}

	resp := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, toProjectResponse(p, userID))
	}
	c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary      Get a project
// @Tags         Projects
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Project ID"
// @Success      200 {object} ProjectResponse
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id", "project")
	if !ok {
		return
	}

	project, ok := h.access.authorize(c, projectID, userID, model.RoleViewer)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(*project, userID))
}

// Update godoc
// @Summary      Update a project
// @Tags         Projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Project ID"
// @Param        request body ProjectRequest true "Project"
// @Success      200 {object} ProjectResponse
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id", "project")
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, ok := h.access.authorize(c, projectID, userID, model.RoleEditor)
	if !ok {
		return
	}

	project.Title = req.Title
	project.Description = req.Description
	if err := h.projectRepo.Update(c.Request.Context(), project); err != nil {
		internalError(c, "Failed to update project", err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(*project, userID))
}

// Delete godoc
// @Summary      Delete a project with its tasks and time entries
// @Tags         Projects
// @Security     BearerAuth
// @Param        id path int true "Project ID"
// @Success      200 {object} map[string]string
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := paramID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		internalError(c, "Failed to retrieve project", err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	if project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the project owner can delete the project"})
		return
	}

	if err := h.projectRepo.Delete(c.Request.Context(), projectID); err != nil {
		internalError(c, "Failed to delete project", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
