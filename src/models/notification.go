package models

import (
	"taskhub/src/types"

	"github.com/google/uuid"
)

type Notification struct {
	ID             uuid.UUID    `gorm:"primarykey;type:uuid" json:"id"`
	RecipientID    uuid.UUID    `gorm:"type:uuid;index" json:"recipient_id"`
	ReferenceType  string       `json:"ref_name"`
	ReferenceValue string       `json:"ref_value"`
	Title          string       `json:"title"`
	Description    *string      `json:"description"`
	ActionType     string       `json:"action_type"`
	ActionData     *types.JSONB `gorm:"type:jsonb" json:"action_data"`
	Read           bool         `gorm:"default:false" json:"read"`

	types.Timestamps
}
