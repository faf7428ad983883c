package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

type ProjectShareRepository struct {
	db *gorm.DB
}

func NewProjectShareRepository(db *gorm.DB) *ProjectShareRepository {
	return &ProjectShareRepository{db: db}
}

// Share grants userID the role on the project, updating the role of an existing share.
func (r *ProjectShareRepository) Share(ctx context.Context, projectID, userID int64, role model.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.ProjectShare
		err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Update("role", role).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&model.ProjectShare{
			ProjectID: projectID,
			UserID:    userID,
			Role:      role,
		}).Error
	})
}

func (r *ProjectShareRepository) Remove(ctx context.Context, projectID, userID int64) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectShare{}).Error
}

// ListShares returns the users a project is shared with.
func (r *ProjectShareRepository) ListShares(ctx context.Context, projectID int64) ([]model.ProjectShare, error) {
	var shares []model.ProjectShare
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Find(&shares).Error
	return shares, err
}

// ListSharedProjects returns the projects shared with userID.
func (r *ProjectShareRepository) ListSharedProjects(ctx context.Context, userID int64) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN project_shares ON project_shares.project_id = projects.id").
		Where("project_shares.user_id = ?", userID).
		Find(&projects).Error
	return projects, err
}

// CheckAccess reports whether userID owns the project or holds a share satisfying requiredRole.
func (r *ProjectShareRepository) CheckAccess(ctx context.Context, projectID, userID int64, requiredRole model.Role) (bool, error) {
	var owned int64
	if err := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ? AND owner_id = ?", projectID, userID).
		Count(&owned).Error; err != nil {
		return false, err
	}
	if owned > 0 {
		return true, nil
	}

	var share model.ProjectShare
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return share.Role.Satisfies(requiredRole), nil
}
