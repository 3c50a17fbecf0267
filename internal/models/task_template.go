package models

import (
	"time"
)

type TriggerType string

const (
	TriggerDealCreated      TriggerType = "DEAL_CREATED"
	TriggerDealStageChanged TriggerType = "DEAL_STAGE_CHANGED"
)

// TaskTemplate is a workspace-scoped blueprint for auto-generated tasks.
// The string primary key lets default templates use a deterministic id
// derived from (workspace, trigger) so repeated seeding upserts in place.
type TaskTemplate struct {
	ID           string      `gorm:"type:varchar(100);primaryKey" json:"id"`
	WorkspaceID  uint        `gorm:"not null;index" json:"workspace_id"`
	TriggerType  TriggerType `gorm:"type:varchar(30);not null" json:"trigger_type"`
	TriggerValue string      `gorm:"type:varchar(50)" json:"trigger_value"`
	Title        string      `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Description  string      `gorm:"type:text" json:"description"`
	DueDays      *int        `json:"due_days"`
	TaskStatus   TaskStatus  `gorm:"type:varchar(20);not null;default:TODO" json:"task_status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
}

func (t *TaskTemplate) TableName() string {
	return "task_templates"
}
