package model

import (
	"time"
)

// ProjectShare grants a user access to a project with a role.
type ProjectShare struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ProjectID int64     `gorm:"not null;index"`
	UserID    int64     `gorm:"not null;index"`
	Role      Role      `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Project Project `gorm:"foreignKey:ProjectID"`
	User    User    `gorm:"foreignKey:UserID"`
}

type Role string

const (
	RoleViewer Role = "viewer" // read only
	RoleEditor Role = "editor" // may create, edit and reorder tasks
)

// Satisfies reports whether r grants at least the required role.
func (r Role) Satisfies(required Role) bool {
	if r == RoleEditor {
		return true
	}
	return r == required
}

func (r Role) Valid() bool {
	return r == RoleViewer || r == RoleEditor
}
