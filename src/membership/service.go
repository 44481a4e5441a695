package membership

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"taskhub/src/errs"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
)

type Service struct {
	store Store
	jobs  JobEnqueuer
	now   func() time.Time
}

func NewService(store Store, jobs JobEnqueuer) *Service {
	return &Service{store: store, jobs: jobs, now: time.Now}
}

// WithClock replaces the clock used for AddedAt; tests pin it.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// run executes fn in one transaction. Errors raised by the rules pass through unchanged;
// anything else is reported as Internal.
func (s *Service) run(ctx context.Context, fn func(tx Tx) error) error {
	err := s.store.RunInTransaction(ctx, fn)
	if err == nil {
		return nil
	}
	var domainErr *errs.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return errs.Wrap(errs.Internal, err, "transaction failed")
}

func (s *Service) dispatch(ctx context.Context, jobs ...Job) {
	if s.jobs == nil {
		return
	}
	for _, job := range jobs {
		if err := s.jobs.Enqueue(ctx, job); err != nil {
			log.Printf("Error enqueuing job %s for %s: %s\n", job.Name, job.Scope.String(), err.Error())
		}
	}
}

func (s *Service) trail(ctx context.Context, tx Tx, kind string, initiator *uuid.UUID, scope types.Scope, target *uuid.UUID, details types.JSONB) error {
	return tx.AppendTrail(ctx, &models.TrailLog{
		ID:        uuid.New(),
		Type:      kind,
		Initiator: initiator,
		ScopeType: scope.Type,
		ScopeID:   scope.ID,
		TargetID:  target,
		Details:   details,
		CreatedAt: s.now(),
	})
}

func scopeNotFound(scope types.Scope) error {
	switch scope.Type {
	case types.SCOPE_TEAM:
		return errs.ErrTeamNotFound
	case types.SCOPE_PROJECT:
		return errs.ErrProjectNotFound
	}
	return errs.ErrWorkspaceNotFound
}

// scopeWorkspace checks the scope exists and returns the workspace it lives in.
func scopeWorkspace(ctx context.Context, tx Tx, scope types.Scope) (uuid.UUID, error) {
	switch scope.Type {
	case types.SCOPE_WORKSPACE:
		ws, err := tx.GetWorkspace(ctx, scope.ID)
		if err != nil {
			return uuid.Nil, err
		}
		return ws.ID, nil
	case types.SCOPE_TEAM:
		team, err := tx.GetTeam(ctx, scope.ID)
		if err != nil {
			return uuid.Nil, err
		}
		return team.WorkspaceID, nil
	case types.SCOPE_PROJECT:
		project, err := tx.GetProject(ctx, scope.ID)
		if err != nil {
			return uuid.Nil, err
		}
		return project.WorkspaceID, nil
	}
	return uuid.Nil, errs.Newf(errs.Invalid, "unknown scope type %q", scope.Type)
}

func findMember(members []models.Membership, id uuid.UUID) *models.Membership {
	for i := range members {
		if members[i].ID == id {
			return &members[i]
		}
	}
	return nil
}

// loadMembers lists a scope's members and rejects an empty scope.
func loadMembers(ctx context.Context, tx Tx, scope types.Scope) ([]models.Membership, error) {
	members, err := tx.ListMembers(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, errs.ErrScopeEmpty
	}
	return members, nil
}

// successor picks who inherits ownership when the owner leaves as a side effect:
// highest role first, then the earliest member, then the lowest id.
func successor(members []models.Membership, leaving map[uuid.UUID]bool) *models.Membership {
	candidates := make([]models.Membership, 0, len(members))
	for _, m := range members {
		if !leaving[m.ID] {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Role.Rank() != b.Role.Rank() {
			return a.Role.Rank() > b.Role.Rank()
		}
		if !a.AddedAt.Equal(b.AddedAt) {
			return a.AddedAt.Before(b.AddedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return &candidates[0]
}

// handOver promotes a successor when the scope's owner is among the memberships about to be
// removed and someone stays behind. It returns the promoted membership, or nil when no
// promotion was needed or the scope is about to become empty.
func (s *Service) handOver(ctx context.Context, tx Tx, scope types.Scope, removing []uuid.UUID) (*models.Membership, error) {
	members, err := tx.ListMembers(ctx, scope)
	if err != nil {
		return nil, err
	}
	leaving := make(map[uuid.UUID]bool, len(removing))
	for _, id := range removing {
		leaving[id] = true
	}
	ownerLeaving := false
	for _, m := range members {
		if m.Role == types.ROLE_OWNER && leaving[m.ID] {
			ownerLeaving = true
			break
		}
	}
	if !ownerLeaving {
		return nil, nil
	}
	next := successor(members, leaving)
	if next == nil {
		return nil, nil
	}
	n, err := tx.SetMemberRole(ctx, scope, next.ID, next.Role, types.ROLE_OWNER)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errs.ErrOwnershipChanged
	}
	if err := s.trail(ctx, tx, JOB_OWNERSHIP_TRANSFERRED, nil, scope, &next.ID, types.JSONB{"reason": "owner removed"}); err != nil {
		return nil, err
	}
	next.Role = types.ROLE_OWNER
	return next, nil
}

func subjectSet(members []models.Membership) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		set[m.SubjectID] = true
	}
	return set
}

func (s *Service) ListMembers(ctx context.Context, scope types.Scope) ([]models.Membership, error) {
	var members []models.Membership
	err := s.run(ctx, func(tx Tx) error {
		if _, err := scopeWorkspace(ctx, tx, scope); err != nil {
			return err
		}
		var err error
		members, err = tx.ListMembers(ctx, scope)
		return err
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ResolveMembership finds the acting user's membership in scope, which must live in
// workspaceID. For teams and projects the user's workspace membership is resolved first.
func (s *Service) ResolveMembership(ctx context.Context, workspaceID uuid.UUID, scope types.Scope, userID uuid.UUID) (*models.Membership, error) {
	var resolved *models.Membership
	err := s.run(ctx, func(tx Tx) error {
		owner, err := scopeWorkspace(ctx, tx, scope)
		if err != nil {
			return err
		}
		if owner != workspaceID {
			return scopeNotFound(scope)
		}
		wm, err := tx.FindMemberBySubject(ctx, types.WorkspaceScope(workspaceID), userID)
		if err != nil {
			return err
		}
		if wm == nil {
			return errs.ErrMemberNotFound
		}
		if scope.Type == types.SCOPE_WORKSPACE {
			resolved = wm
			return nil
		}
		m, err := tx.FindMemberBySubject(ctx, scope, wm.ID)
		if err != nil {
			return err
		}
		if m == nil {
			return errs.ErrMemberNotFound
		}
		resolved = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}
