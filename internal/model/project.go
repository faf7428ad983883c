package model

import (
	"time"
)

// Project is the parent collection that owns an ordered list of tasks.
type Project struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"not null"`
	Description string
	OwnerID     int64 `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner User `gorm:"foreignKey:OwnerID"`
}
