package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts the task at position at, shifting the tasks at or after it down by one.
// A nil at appends the task. The project row is locked so concurrent creates cannot
// compute the same sequence.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task, at *int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project model.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&project, "id = ?", task.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("lock project %d: %w", task.ProjectID, err)
		}

		var count int64
		if err := tx.Model(&model.Task{}).Where("project_id = ?", task.ProjectID).Count(&count).Error; err != nil {
			return fmt.Errorf("count tasks of project %d: %w", task.ProjectID, err)
		}

		task.Sequence = int(count)
		if at != nil {
			if *at < 0 || int64(*at) > count {
				return ErrSequenceOutOfRange
			}
			task.Sequence = *at
			if err := tx.Model(&model.Task{}).
				Where("project_id = ? AND sequence >= ?", task.ProjectID, task.Sequence).
				Update("sequence", gorm.Expr("sequence + 1")).Error; err != nil {
				return fmt.Errorf("make room at sequence %d: %w", task.Sequence, err)
			}
		}
		return tx.Create(task).Error
	})
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// ListByProject returns the project's tasks in sequence order.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("sequence, id").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Model(task).Select("Title", "Description", "DueDate", "EstimateMinutes").Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task and its time entries and closes the gap it leaves in the sequence.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.TimeEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Task{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&model.Task{}).
			Where("project_id = ? AND sequence > ?", task.ProjectID, task.Sequence).
			Update("sequence", gorm.Expr("sequence - 1")).Error
	})
}

// UpdateSequence moves a task to newSequence inside its project and renumbers the
// project's tasks to 0..n-1. The project's rows are locked for the duration of the
// transaction so concurrent moves on the same project are serialized. It returns the
// refreshed ordered collection.
func (r *TaskRepository) UpdateSequence(ctx context.Context, taskID, projectID int64, newSequence int) ([]model.Task, error) {
	var ordered []model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		if task.ProjectID != projectID {
			return ErrTaskProjectMismatch
		}

		var siblings []model.Task
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_id = ?", projectID).
			Order("sequence, id").
			Find(&siblings).Error; err != nil {
			return err
		}
		if newSequence < 0 || newSequence >= len(siblings) {
			return ErrSequenceOutOfRange
		}

		from := -1
		for i := range siblings {
			if siblings[i].ID == taskID {
				from = i
				break
			}
		}
		if from < 0 {
			return ErrTaskNotFound
		}

		moved := siblings[from]
		siblings = append(siblings[:from], siblings[from+1:]...)
		siblings = append(siblings[:newSequence], append([]model.Task{moved}, siblings[newSequence:]...)...)

		for i := range siblings {
			if siblings[i].Sequence == i {
				continue
			}
			if err := tx.Model(&model.Task{}).
				Where("id = ?", siblings[i].ID).
				Update("sequence", i).Error; err != nil {
				return fmt.Errorf("renumber task %d: %w", siblings[i].ID, err)
			}
			siblings[i].Sequence = i
		}
		ordered = siblings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ordered, nil
}

// AssignUser assigns a user to a task
func (r *TaskRepository) AssignUser(ctx context.Context, taskID, userID int64) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Update("assigned_to", userID)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// UnassignUser removes user assignment from a task
func (r *TaskRepository) UnassignUser(ctx context.Context, taskID int64) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Update("assigned_to", nil)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
