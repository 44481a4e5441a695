package membership

import (
	"context"

	"taskhub/src/errs"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
)

type TransferResult struct {
	// rows updated by the promotion and the demotion, in that order
	UpdatedRows [2]int64          `json:"updated_rows"`
	NewOwner    models.Membership `json:"new_owner"`
}

// TransferOwnership promotes newOwnerID to owner and demotes currentOwnerID to admin in one
// transaction. Both memberships are identified by membership id within scope.
func (s *Service) TransferOwnership(ctx context.Context, scope types.Scope, currentOwnerID, newOwnerID uuid.UUID) (*TransferResult, error) {
	if currentOwnerID == newOwnerID {
		return nil, errs.ErrSelfTransfer
	}

	var result TransferResult
	err := s.run(ctx, func(tx Tx) error {
		if _, err := scopeWorkspace(ctx, tx, scope); err != nil {
			return err
		}
		members, err := loadMembers(ctx, tx, scope)
		if err != nil {
			return err
		}
		current := findMember(members, currentOwnerID)
		next := findMember(members, newOwnerID)
		if current == nil || next == nil {
			return errs.ErrMemberNotFound
		}
		// callers check ownership before the rows are locked; losing it since then is a stale transfer
		if current.Role != types.ROLE_OWNER {
			return errs.ErrOwnershipChanged
		}

		promoted, err := tx.SetMemberRole(ctx, scope, next.ID, next.Role, types.ROLE_OWNER)
		if err != nil {
			return err
		}
		if promoted == 0 {
			return errs.ErrOwnershipChanged
		}
		demoted, err := tx.SetMemberRole(ctx, scope, current.ID, types.ROLE_OWNER, types.ROLE_ADMIN)
		if err != nil {
			return err
		}
		if demoted == 0 {
			return errs.ErrOwnershipChanged
		}

		result.UpdatedRows = [2]int64{promoted, demoted}
		result.NewOwner = *next
		result.NewOwner.Role = types.ROLE_OWNER
		return s.trail(ctx, tx, JOB_OWNERSHIP_TRANSFERRED, &current.ID, scope, &next.ID, types.JSONB{
			"previous_role": string(next.Role),
		})
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, Job{
		Name:  JOB_OWNERSHIP_TRANSFERRED,
		Scope: scope,
		Payload: types.JSONB{
			"previous_owner": currentOwnerID.String(),
			"new_owner":      newOwnerID.String(),
			"subject_id":     result.NewOwner.SubjectID.String(),
		},
	})
	return &result, nil
}
