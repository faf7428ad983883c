package model

import (
	"time"
)

type Task struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	ProjectID       int64  `gorm:"not null;index"`
	Title           string `gorm:"not null"`
	Description     string
	AssignedTo      *int64
	CreatedBy       int64 `gorm:"not null"`
	DueDate         *time.Time
	Sequence        int `gorm:"not null"`
	EstimateMinutes int `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
