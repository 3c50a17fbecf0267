package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WorkspaceID uint           `gorm:"not null;index" json:"workspace_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:TODO" json:"status"`
	DueAt       *time.Time     `json:"due_at"`
	ClientID    *uint          `gorm:"index" json:"client_id"`
	DealID      *uint          `gorm:"index" json:"deal_id"`
	AssigneeID  *uint          `json:"assignee_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Client    *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Deal      *Deal     `gorm:"foreignKey:DealID" json:"deal,omitempty"`
	Assignee  *User     `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (t *Task) TableName() string {
	return "tasks"
}
