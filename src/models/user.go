package models

import (
	"taskhub/src/types"

	"github.com/google/uuid"
)

type User struct {
	ID    uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `gorm:"uniqueIndex" json:"email,omitempty"`
	UID   string    `json:"uid,omitempty"`

	Memberships []WorkspaceMember `gorm:"foreignKey:user_id" json:"memberships,omitempty"`

	types.Timestamps
}
