package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type ProjectVisibility string

const (
	VISIBILITY_PRIVATE   ProjectVisibility = "private"
	VISIBILITY_WORKSPACE ProjectVisibility = "workspace"
)

type CreateWorkspaceRequestBody struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

type CreateTeamRequestBody struct {
	Name string `json:"name" binding:"required"`
}

type CreateProjectRequestBody struct {
	Name          string            `json:"name" binding:"required"`
	Visibility    ProjectVisibility `json:"visibility,omitempty" binding:"omitempty,oneof=private workspace"`
	BackgroundURL *string           `json:"background_url,omitempty" binding:"omitempty,url"`
}

type AddMemberRequestBody struct {
	// user id for workspaces, workspace member id for teams and projects
	MemberRef string `json:"member_ref" binding:"required,uuid"`
}

type UpdateMemberRoleRequestBody struct {
	Role string `json:"role" binding:"required,assignablerole"`
}

type TransferOwnershipRequestBody struct {
	NewOwnerID string `json:"new_owner_id" binding:"required,uuid"`
}

type WorkspaceRequestParams struct {
	WorkspaceID string `uri:"workspaceId" binding:"required,uuid"`
}

type MemberRequestParams struct {
	WorkspaceID string `uri:"workspaceId" binding:"required,uuid"`
	MemberID    string `uri:"memberId" binding:"required,uuid"`
}

type UnassignTeamQuery struct {
	RemoveMembers bool `form:"remove_members,omitempty"`
}

type Metadata map[string]any

type Handler func(payload string)
