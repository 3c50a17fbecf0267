package models

import (
	"time"
)

// DealChecklistItem is one required step of a deal's per-stage checklist.
// The (deal, stage, title) triple is unique; rows are lazily materialized
// the first time a stage's checklist is viewed.
type DealChecklistItem struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	DealID        uint       `gorm:"not null;uniqueIndex:idx_checklist_deal_stage_title" json:"deal_id"`
	Stage         string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_checklist_deal_stage_title" json:"stage"`
	Title         string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_checklist_deal_stage_title" json:"title"`
	Completed     bool       `gorm:"default:false" json:"completed"`
	CompletedByID *uint      `json:"completed_by_id"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Deal        Deal  `gorm:"foreignKey:DealID" json:"deal,omitempty"`
	CompletedBy *User `gorm:"foreignKey:CompletedByID" json:"completed_by,omitempty"`
}

func (i *DealChecklistItem) TableName() string {
	return "deal_checklist_items"
}
