package model

import (
	"time"
)

// TimeEntry is one line of a user's timesheet, booked against a task.
type TimeEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	TaskID    int64     `gorm:"not null;index"`
	UserID    int64     `gorm:"not null;index"`
	WorkDate  time.Time `gorm:"type:date;not null"`
	Minutes   int       `gorm:"not null"`
	Note      string
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
