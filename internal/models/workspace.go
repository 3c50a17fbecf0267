package models

import (
	"time"

	"gorm.io/gorm"
)

type Workspace struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=1,max=255"`
	Slug      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug" validate:"required"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Members []Member `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
}

func (w *Workspace) TableName() string {
	return "workspaces"
}
