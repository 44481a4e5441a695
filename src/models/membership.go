package models

import (
	"time"

	"taskhub/src/types"

	"github.com/google/uuid"
)

// Membership is the scope-independent view of a WorkspaceMember, TeamMember or ProjectMember row.
// SubjectID is the user id in a workspace scope and the workspace member id otherwise.
type Membership struct {
	ID        uuid.UUID   `json:"id"`
	Scope     types.Scope `json:"scope"`
	SubjectID uuid.UUID   `json:"subject_id"`
	Role      types.Role  `json:"role"`
	AddedAt   time.Time   `json:"added_at"`
}

func (m WorkspaceMember) Membership() Membership {
	return Membership{ID: m.ID, Scope: types.WorkspaceScope(m.WorkspaceID), SubjectID: m.UserID, Role: m.Role, AddedAt: m.AddedAt}
}

func (m TeamMember) Membership() Membership {
	return Membership{ID: m.ID, Scope: types.TeamScope(m.TeamID), SubjectID: m.WorkspaceMemberID, Role: m.Role, AddedAt: m.AddedAt}
}

func (m ProjectMember) Membership() Membership {
	return Membership{ID: m.ID, Scope: types.ProjectScope(m.ProjectID), SubjectID: m.WorkspaceMemberID, Role: m.Role, AddedAt: m.AddedAt}
}

func SubjectIDs(members []Membership) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.SubjectID)
	}
	return ids
}

func OwnerCount(members []Membership) int {
	n := 0
	for _, m := range members {
		if m.Role == types.ROLE_OWNER {
			n++
		}
	}
	return n
}
