package models

import (
	"time"

	"github.com/teamflow/crm-api/internal/rbac"
)

// Member joins a user to a workspace with a role. The composite unique
// index enforces one membership per (workspace, user) pair.
type Member struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WorkspaceID uint      `gorm:"not null;uniqueIndex:idx_members_workspace_user" json:"workspace_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_members_workspace_user" json:"user_id"`
	Role        rbac.Role `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *Member) TableName() string {
	return "members"
}
