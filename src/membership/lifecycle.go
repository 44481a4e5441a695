package membership

import (
	"context"

	"taskhub/src/errs"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
)

// AddMember inserts subjectID into scope with role member. For a workspace the subject is a
// user id; for a team or project it is a membership id of the enclosing workspace.
func (s *Service) AddMember(ctx context.Context, scope types.Scope, subjectID uuid.UUID) (*models.Membership, error) {
	var added *models.Membership
	err := s.run(ctx, func(tx Tx) error {
		workspaceID, err := scopeWorkspace(ctx, tx, scope)
		if err != nil {
			return err
		}
		if _, err := loadMembers(ctx, tx, scope); err != nil {
			return err
		}

		if scope.Type == types.SCOPE_WORKSPACE {
			if _, err := tx.GetUser(ctx, subjectID); err != nil {
				return err
			}
		} else {
			wm, err := tx.GetWorkspaceMember(ctx, subjectID)
			if err != nil {
				return err
			}
			if wm.WorkspaceID != workspaceID {
				return errs.ErrWorkspaceMismatch
			}
		}

		existing, err := tx.FindMemberBySubject(ctx, scope, subjectID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errs.ErrAlreadyMember
		}

		added = &models.Membership{
			ID:        uuid.New(),
			Scope:     scope,
			SubjectID: subjectID,
			Role:      types.ROLE_MEMBER,
			AddedAt:   s.now(),
		}
		if err := tx.CreateMember(ctx, workspaceID, added); err != nil {
			return err
		}
		return s.trail(ctx, tx, JOB_MEMBER_ADDED, nil, scope, &added.ID, types.JSONB{"subject_id": subjectID.String()})
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, Job{Name: JOB_MEMBER_ADDED, Scope: scope, Payload: types.JSONB{
		"membership_id": added.ID.String(),
		"subject_id":    subjectID.String(),
	}})
	return added, nil
}

// UpdateRole changes a non-owner membership between admin and member.
func (s *Service) UpdateRole(ctx context.Context, scope types.Scope, membershipID uuid.UUID, role types.Role) (*models.Membership, error) {
	if !role.Valid() {
		return nil, errs.ErrInvalidRole
	}

	var updated *models.Membership
	err := s.run(ctx, func(tx Tx) error {
		if _, err := scopeWorkspace(ctx, tx, scope); err != nil {
			return err
		}
		members, err := loadMembers(ctx, tx, scope)
		if err != nil {
			return err
		}
		target := findMember(members, membershipID)
		if target == nil {
			return errs.ErrMemberNotFound
		}
		if target.Role == role {
			return errs.ErrRoleUnchanged
		}
		if role == types.ROLE_OWNER {
			return errs.ErrOwnerViaTransfer
		}
		if target.Role == types.ROLE_OWNER {
			return errs.ErrOwnerRoleLocked
		}

		n, err := tx.SetMemberRole(ctx, scope, target.ID, target.Role, role)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.ErrMemberNotFound
		}
		previous := target.Role
		target.Role = role
		updated = target
		return s.trail(ctx, tx, JOB_MEMBER_ROLE_UPDATED, nil, scope, &target.ID, types.JSONB{
			"from": string(previous),
			"to":   string(role),
		})
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, Job{Name: JOB_MEMBER_ROLE_UPDATED, Scope: scope, Payload: types.JSONB{
		"membership_id": updated.ID.String(),
		"subject_id":    updated.SubjectID.String(),
		"role":          string(role),
	}})
	return updated, nil
}

type RemoveResult struct {
	RemovedRows int64 `json:"removed_rows"`
	// workspace removals only
	TeamMembershipsRemoved    int64 `json:"team_memberships_removed,omitempty"`
	ProjectMembershipsRemoved int64 `json:"project_memberships_removed,omitempty"`
	OwnershipsHandedOver      int64 `json:"ownerships_handed_over,omitempty"`
	// set when the owner left and someone else was promoted
	NewOwner *models.Membership `json:"new_owner,omitempty"`
}

// authorizeRemoval lets anyone leave. Removing someone else takes a manager, and admins cannot
// remove the owner.
func authorizeRemoval(requester, target *models.Membership) error {
	if requester.ID == target.ID {
		return nil
	}
	if !requester.Role.Manager() {
		return errs.ErrNotManager
	}
	if target.Role == types.ROLE_OWNER && requester.Role != types.ROLE_OWNER {
		return errs.ErrAdminRemovingOwner
	}
	return nil
}

// RemoveMember deletes targetID from scope on behalf of requesterID. Both are membership ids
// in scope. An owner leaving a scope that keeps other members hands ownership to a successor
// first. Removing a workspace member cascades to the teams and projects of that workspace.
func (s *Service) RemoveMember(ctx context.Context, scope types.Scope, requesterID, targetID uuid.UUID) (*RemoveResult, error) {
	if scope.Type == types.SCOPE_WORKSPACE {
		return s.RemoveWorkspaceMember(ctx, scope.ID, requesterID, targetID)
	}

	var result RemoveResult
	var removed models.Membership
	err := s.run(ctx, func(tx Tx) error {
		if _, err := scopeWorkspace(ctx, tx, scope); err != nil {
			return err
		}
		members, err := loadMembers(ctx, tx, scope)
		if err != nil {
			return err
		}
		requester := findMember(members, requesterID)
		target := findMember(members, targetID)
		if requester == nil || target == nil {
			return errs.ErrMemberNotFound
		}
		if err := authorizeRemoval(requester, target); err != nil {
			return err
		}
		promoted, err := s.handOver(ctx, tx, scope, []uuid.UUID{target.ID})
		if err != nil {
			return err
		}
		if promoted != nil {
			result.OwnershipsHandedOver = 1
			result.NewOwner = promoted
		}

		n, err := tx.DeleteMembers(ctx, scope, target.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.ErrMemberNotFound
		}
		result.RemovedRows = n
		removed = *target
		return s.trail(ctx, tx, JOB_MEMBER_REMOVED, &requester.ID, scope, &target.ID, nil)
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, removalJobs(scope, removed, result.NewOwner)...)
	return &result, nil
}

func removalJobs(scope types.Scope, removed models.Membership, newOwner *models.Membership) []Job {
	jobs := []Job{{Name: JOB_MEMBER_REMOVED, Scope: scope, Payload: types.JSONB{
		"membership_id": removed.ID.String(),
		"subject_id":    removed.SubjectID.String(),
	}}}
	if newOwner != nil {
		jobs = append(jobs, Job{Name: JOB_OWNERSHIP_TRANSFERRED, Scope: scope, Payload: types.JSONB{
			"previous_owner": removed.ID.String(),
			"new_owner":      newOwner.ID.String(),
			"subject_id":     newOwner.SubjectID.String(),
		}})
	}
	return jobs
}
