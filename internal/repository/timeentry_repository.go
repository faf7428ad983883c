package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *model.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, id int64) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *TimeEntryRepository) ListByTask(ctx context.Context, taskID int64) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("work_date, id").
		Find(&entries).Error
	return entries, err
}

// ListByUser returns a user's entries with from <= work_date <= to.
func (r *TimeEntryRepository) ListByUser(ctx context.Context, userID int64, from, to time.Time) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date BETWEEN ? AND ?", userID, from, to).
		Order("work_date, id").
		Find(&entries).Error
	return entries, err
}

// SumByTask returns the total booked minutes for a task.
func (r *TimeEntryRepository) SumByTask(ctx context.Context, taskID int64) (int, error) {
	var total struct {
		Minutes int
	}
	err := r.db.WithContext(ctx).Model(&model.TimeEntry{}).
		Select("COALESCE(SUM(minutes), 0) AS minutes").
		Where("task_id = ?", taskID).
		Scan(&total).Error
	return total.Minutes, err
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&model.TimeEntry{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTimeEntryNotFound
	}
	return nil
}
