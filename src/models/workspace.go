package models

import (
	"time"

	"taskhub/src/types"

	"github.com/google/uuid"
)

type Workspace struct {
	ID          uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	// creator; ownership lives on WorkspaceMember.Role
	UserID uuid.UUID `gorm:"type:uuid" json:"user_id"`

	Members []WorkspaceMember `gorm:"foreignKey:workspace_id" json:"members,omitempty"`
	Teams   []Team            `gorm:"foreignKey:workspace_id" json:"teams,omitempty"`

	types.Timestamps
}

type WorkspaceMember struct {
	ID          uuid.UUID  `gorm:"primarykey;type:uuid" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;uniqueIndex:workspace_member" json:"user_id"`
	WorkspaceID uuid.UUID  `gorm:"type:uuid;uniqueIndex:workspace_member;index" json:"workspace_id"`
	Role        types.Role `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	AddedAt     time.Time  `gorm:"autoCreateTime;<-:create" json:"added_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"-"`

	User *User `gorm:"foreignKey:user_id" json:"user,omitempty"`
}
