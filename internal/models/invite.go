package models

import (
	"time"

	"github.com/teamflow/crm-api/internal/rbac"
)

type Invite struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID uint      `gorm:"not null;index" json:"workspace_id"`
	Email       string    `gorm:"type:varchar(255);not null" json:"email" validate:"required,email"`
	Role        rbac.Role `gorm:"type:varchar(20);not null" json:"role"`
	Token       string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"token"`
	CreatedByID uint      `gorm:"not null" json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	CreatedBy User      `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

func (i *Invite) TableName() string {
	return "invites"
}
