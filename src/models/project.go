package models

import (
	"time"

	"taskhub/src/types"

	"github.com/google/uuid"
)

type Project struct {
	ID                uuid.UUID               `gorm:"primarykey;type:uuid" json:"id"`
	Name              string                  `json:"name"`
	Visibility        types.ProjectVisibility `gorm:"type:varchar(16);default:'private'" json:"visibility"`
	BackgroundURL     *string                 `json:"background_url,omitempty"`
	WorkspaceID       uuid.UUID               `gorm:"type:uuid;index" json:"workspace_id"`
	WorkspaceMemberID uuid.UUID               `gorm:"type:uuid" json:"workspace_member_id"`

	Members []ProjectMember `gorm:"foreignKey:project_id" json:"members,omitempty"`

	types.Timestamps
}

type ProjectMember struct {
	ID                uuid.UUID  `gorm:"primarykey;type:uuid" json:"id"`
	WorkspaceMemberID uuid.UUID  `gorm:"type:uuid;uniqueIndex:project_member" json:"workspace_member_id"`
	ProjectID         uuid.UUID  `gorm:"type:uuid;uniqueIndex:project_member;index" json:"project_id"`
	Role              types.Role `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	AddedAt           time.Time  `gorm:"autoCreateTime;<-:create" json:"added_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"-"`
}

// ProjectTeam links a team to a project. It carries no role.
type ProjectTeam struct {
	ProjectID uuid.UUID `gorm:"primaryKey;type:uuid" json:"project_id"`
	TeamID    uuid.UUID `gorm:"primaryKey;type:uuid;index" json:"team_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
