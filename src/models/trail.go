package models

import (
	"time"

	"taskhub/src/types"

	"github.com/google/uuid"
)

// TrailLog is an audit record written in the same transaction as the change it describes.
type TrailLog struct {
	ID        uuid.UUID       `gorm:"primarykey;type:uuid" json:"id"`
	Type      string          `gorm:"index" json:"type"`
	Initiator *uuid.UUID      `gorm:"type:uuid" json:"initiator,omitempty"`
	ScopeType types.ScopeType `gorm:"type:varchar(16)" json:"scope_type"`
	ScopeID   uuid.UUID       `gorm:"type:uuid;index" json:"scope_id"`
	TargetID  *uuid.UUID      `gorm:"type:uuid" json:"target_id,omitempty"`
	Details   types.JSONB     `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
