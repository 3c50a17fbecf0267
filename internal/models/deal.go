package models

import (
	"time"

	"gorm.io/gorm"
)

// Pipeline stages. Stage is stored as a plain string but the API only
// accepts values from this pipeline.
const (
	StageLead          = "lead"
	StageQualification = "qualification"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageClosedWon     = "closed_won"
	StageClosedLost    = "closed_lost"
)

// PipelineStages lists the stages in pipeline order.
var PipelineStages = []string{
	StageLead,
	StageQualification,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

func IsValidStage(stage string) bool {
	for _, s := range PipelineStages {
		if s == stage {
			return true
		}
	}
	return false
}

type Deal struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WorkspaceID uint           `gorm:"not null;index" json:"workspace_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Stage       string         `gorm:"type:varchar(50);not null;default:lead" json:"stage"`
	Amount      *float64       `json:"amount"`
	ClientID    *uint          `gorm:"index" json:"client_id"`
	AssigneeID  *uint          `json:"assignee_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Client    *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Assignee  *User     `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}

func (d *Deal) TableName() string {
	return "deals"
}
