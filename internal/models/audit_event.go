package models

import (
	"time"
)

type AuditAction string

const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionUpdate  AuditAction = "UPDATE"
	AuditActionDelete  AuditAction = "DELETE"
	AuditActionCheck   AuditAction = "CHECK"
	AuditActionUncheck AuditAction = "UNCHECK"
)

// AuditEvent is an append-only record of a mutation. Rows are never
// updated or deleted; there is no soft-delete column on purpose.
type AuditEvent struct {
	ID          string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	WorkspaceID uint        `gorm:"not null;index" json:"workspace_id"`
	ActorID     uint        `gorm:"not null" json:"actor_id"`
	EntityType  string      `gorm:"type:varchar(50);not null;index" json:"entity_type"`
	EntityID    string      `gorm:"type:varchar(50);not null" json:"entity_id"`
	Action      AuditAction `gorm:"type:varchar(20);not null" json:"action"`
	Payload     JSON        `gorm:"type:json" json:"payload"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`

	Actor User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (e *AuditEvent) TableName() string {
	return "audit_events"
}
