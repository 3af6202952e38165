package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records every state-changing call: who did what to which entity
// and how it ended.
type AuditLog struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	RequestID  string         `json:"request_id" gorm:"index"`
	ActorID    uint           `json:"actor_id" gorm:"index"`
	ActorRoles string         `json:"actor_roles"`
	Action     string         `json:"action" gorm:"index"`
	EntityType string         `json:"entity_type"`
	EntityID   uint           `json:"entity_id"`
	Outcome    string         `json:"outcome"` // OK or an error kind
	Message    string         `json:"message"`
	Details    datatypes.JSON `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
