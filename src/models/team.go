package models

import (
	"time"

	"taskhub/src/types"

	"github.com/google/uuid"
)

type Team struct {
	ID          uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`
	Name        string    `json:"name,omitempty"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;index" json:"workspace_id"`
	// creator's workspace membership, not a role marker
	WorkspaceMemberID uuid.UUID `gorm:"type:uuid" json:"workspace_member_id"`

	Workspace *Workspace   `gorm:"foreignKey:workspace_id" json:"-"`
	Members   []TeamMember `gorm:"foreignKey:team_id" json:"members,omitempty"`

	types.Timestamps
}

type TeamMember struct {
	ID                uuid.UUID  `gorm:"primarykey;type:uuid" json:"id"`
	WorkspaceMemberID uuid.UUID  `gorm:"type:uuid;uniqueIndex:team_member" json:"workspace_member_id"`
	TeamID            uuid.UUID  `gorm:"type:uuid;uniqueIndex:team_member;index" json:"team_id"`
	WorkspaceID       uuid.UUID  `gorm:"type:uuid;index" json:"workspace_id"`
	Role              types.Role `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	AddedAt           time.Time  `gorm:"autoCreateTime;<-:create" json:"added_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"-"`
}
