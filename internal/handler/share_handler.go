package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
)

type ShareHandler struct {
	projectRepo ProjectRepository
	userRepo    UserRepository
	shareRepo   ShareRepository
}

func NewShareHandler(projectRepo ProjectRepository, userRepo UserRepository, shareRepo ShareRepository) *ShareHandler {
	return &ShareHandler{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		shareRepo:   shareRepo,
	}
}

type ShareProjectRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=viewer editor"`
}

type ShareResponse struct {
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsOwner bool   `json:"is_owner"`
}

// ownedProject loads the project and requires the caller to own it.
func (h *ShareHandler) ownedProject(c *gin.Context, userID int64, denied string) (*model.Project, bool) {
	projectID, ok := paramID(c, "id", "project")
	if !ok {
		return nil, false
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
	if err != nil {
		internalError(c, "Failed to retrieve project", err)
		return nil, false
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return nil, false
	}
	if project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": denied})
		return nil, false
	}
	return project, true
}

// ShareProject godoc
// @Summary      Share a project with a user by email
// @Tags         Project Sharing
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Project ID"
// @Param        request body ShareProjectRequest true "Share"
// @Success      200 {object} map[string]interface{}
// @Router       /projects/{id}/share [post]
func (h *ShareHandler) ShareProject(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	project, ok := h.ownedProject(c, userID, "Only the project owner can share the project")
	if !ok {
		return
	}

	var req ShareProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	target, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		internalError(c, "Failed to find user", err)
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if target.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot share project with yourself"})
		return
	}

	if err := h.shareRepo.Share(c.Request.Context(), project.ID, target.ID, model.Role(req.Role)); err != nil {
		internalError(c, "Failed to share project", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project shared successfully",
		"share": ShareResponse{
			UserID: target.ID,
			Email:  target.Email,
			Name:   target.Name,
			Role:   req.Role,
		},
	})
}

// RemoveShare godoc
// @Summary      Revoke a user's access to a project
// @Tags         Project Sharing
// @Security     BearerAuth
// @Param        id path int true "Project ID"
// @Param        user_id path int true "User ID"
// @Success      200 {object} map[string]string
// @Router       /projects/{id}/share/{user_id} [delete]
func (h *ShareHandler) RemoveShare(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetUserID, ok := paramID(c, "user_id", "user")
	if !ok {
		return
	}
	project, ok := h.ownedProject(c, userID, "Only the project owner can remove access")
	if !ok {
		return
	}

	if err := h.shareRepo.Remove(c.Request.Context(), project.ID, targetUserID); err != nil {
		internalError(c, "Failed to remove share", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project access removed successfully"})
}

// GetProjectShares godoc
// @Summary      List the users with access to a project
// @Tags         Project Sharing
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Project ID"
// @Success      200 {array} ShareResponse
// @Router       /projects/{id}/share [get]
func (h *ShareHandler) GetProjectShares(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	project, ok := h.ownedProject(c, userID, "Only the project owner can view shares")
	if !ok {
		return
	}

	owner, err := h.userRepo.GetByID(c.Request.Context(), project.OwnerID)
	if err != nil {
		internalError(c, "Failed to retrieve owner", err)
		return
	}

	shares, err := h.shareRepo.ListShares(c.Request.Context(), project.ID)
	if err != nil {
		internalError(c, "Failed to retrieve shares", err)
		return
	}

	resp := make([]ShareResponse, 0, len(shares)+1)
	if owner != nil {
		resp = append(resp, ShareResponse{
			UserID:  owner.ID,
			Email:   owner.Email,
			Name:    owner.Name,
			Role:    "owner",
			IsOwner: true,
		})
	}
	for _, s := range shares {
		resp = append(resp, ShareResponse{
			UserID: s.UserID,
			Email:  s.User.Email,
			Name:   s.User.Name,
			Role:   string(s.Role),
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GetSharedProjects godoc
// @Summary      List projects shared with the caller
// @Tags         Project Sharing
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} ProjectResponse
// @Router       /shared-projects [get]
func (h *ShareHandler) GetSharedProjects(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.shareRepo.ListSharedProjects(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "Failed to retrieve shared projects", err)
		return
	}

	resp := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, toProjectResponse(p, userID))
	}
	c.JSON(http.StatusOK, resp)
}
