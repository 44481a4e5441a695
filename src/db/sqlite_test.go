package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhub/src/membership"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMemoryStore(t *testing.T) (*gorm.DB, *Store) {
	conn, err := NewMemoryDB()
	require.NoError(t, err)
	return conn, NewStore(conn)
}

func seedWorkspace(t *testing.T, s *Store) (uuid.UUID, *models.Membership) {
	ctx := context.Background()
	wsID := uuid.New()
	owner := &models.Membership{ID: uuid.New(), Scope: types.WorkspaceScope(wsID), SubjectID: uuid.New(), Role: types.ROLE_OWNER, AddedAt: time.Now().UTC()}
	err := s.RunInTransaction(ctx, func(tx membership.Tx) error {
		if err := tx.CreateWorkspace(ctx, &models.Workspace{ID: wsID, Name: "w", Slug: "w-" + wsID.String()}); err != nil {
			return err
		}
		return tx.CreateMember(ctx, wsID, owner)
	})
	require.NoError(t, err)
	return wsID, owner
}

func members(t *testing.T, s *Store, scope types.Scope) []models.Membership {
	var out []models.Membership
	err := s.RunInTransaction(context.Background(), func(tx membership.Tx) error {
		var err error
		out, err = tx.ListMembers(context.Background(), scope)
		return err
	})
	require.NoError(t, err)
	return out
}

func TestMemoryDBIsPrivate(t *testing.T) {
	_, first := newMemoryStore(t)
	_, second := newMemoryStore(t)
	wsID, _ := seedWorkspace(t, first)

	assert.Len(t, members(t, first, types.WorkspaceScope(wsID)), 1)
	assert.Empty(t, members(t, second, types.WorkspaceScope(wsID)))
}

func TestRollbackOnError(t *testing.T) {
	_, s := newMemoryStore(t)
	wsID, owner := seedWorkspace(t, s)
	scope := types.WorkspaceScope(wsID)

	boom := errors.New("boom")
	err := s.RunInTransaction(context.Background(), func(tx membership.Tx) error {
		n, err := tx.SetMemberRole(context.Background(), scope, owner.ID, types.ROLE_OWNER, types.ROLE_ADMIN)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, types.ROLE_OWNER, members(t, s, scope)[0].Role)
}

func TestRollbackOnPanic(t *testing.T) {
	_, s := newMemoryStore(t)
	wsID, _ := seedWorkspace(t, s)
	scope := types.WorkspaceScope(wsID)

	assert.Panics(t, func() {
		_ = s.RunInTransaction(context.Background(), func(tx membership.Tx) error {
			_, _ = tx.DeleteAllMembers(context.Background(), scope)
			panic("tx aborted")
		})
	})
	assert.Len(t, members(t, s, scope), 1)
}

func TestConditionalRoleWrite(t *testing.T) {
	_, s := newMemoryStore(t)
	wsID, owner := seedWorkspace(t, s)
	scope := types.WorkspaceScope(wsID)

	err := s.RunInTransaction(context.Background(), func(tx membership.Tx) error {
		n, err := tx.SetMemberRole(context.Background(), scope, owner.ID, types.ROLE_MEMBER, types.ROLE_ADMIN)
		assert.Equal(t, int64(0), n)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, types.ROLE_OWNER, members(t, s, scope)[0].Role)
}

func TestDuplicateMembershipRejected(t *testing.T) {
	_, s := newMemoryStore(t)
	wsID, owner := seedWorkspace(t, s)

	err := s.RunInTransaction(context.Background(), func(tx membership.Tx) error {
		dup := *owner
		dup.ID = uuid.New()
		return tx.CreateMember(context.Background(), wsID, &dup)
	})
	assert.Error(t, err)
	assert.Len(t, members(t, s, types.WorkspaceScope(wsID)), 1)
}

func TestListSubjectMembershipsStaysInWorkspace(t *testing.T) {
	ctx := context.Background()
	_, s := newMemoryStore(t)
	wsID, owner := seedWorkspace(t, s)
	otherWS, _ := seedWorkspace(t, s)
	teamID, projectID, foreignProject := uuid.New(), uuid.New(), uuid.New()

	err := s.RunInTransaction(ctx, func(tx membership.Tx) error {
		require.NoError(t, tx.CreateTeam(ctx, &models.Team{ID: teamID, WorkspaceID: wsID, Name: "t"}))
		require.NoError(t, tx.CreateProject(ctx, &models.Project{ID: projectID, WorkspaceID: wsID, Name: "p"}))
		require.NoError(t, tx.CreateProject(ctx, &models.Project{ID: foreignProject, WorkspaceID: otherWS, Name: "q"}))
		for _, scope := range []types.Scope{types.TeamScope(teamID), types.ProjectScope(projectID), types.ProjectScope(foreignProject)} {
			m := &models.Membership{ID: uuid.New(), Scope: scope, SubjectID: owner.ID, Role: types.ROLE_OWNER, AddedAt: time.Now().UTC()}
			require.NoError(t, tx.CreateMember(ctx, wsID, m))
		}
		return nil
	})
	require.NoError(t, err)

	var found []models.Membership
	err = s.RunInTransaction(ctx, func(tx membership.Tx) error {
		var err error
		found, err = tx.ListSubjectMemberships(ctx, wsID, owner.ID)
		return err
	})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, types.TeamScope(teamID), found[0].Scope)
	assert.Equal(t, types.ProjectScope(projectID), found[1].Scope)
}

func TestMemoryOwnershipAnomalies(t *testing.T) {
	_, s := newMemoryStore(t)
	wsID, owner := seedWorkspace(t, s)
	scope := types.WorkspaceScope(wsID)

	anomalies, err := s.OwnershipAnomalies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, anomalies)

	err = s.RunInTransaction(context.Background(), func(tx membership.Tx) error {
		_, err := tx.SetMemberRole(context.Background(), scope, owner.ID, types.ROLE_OWNER, types.ROLE_ADMIN)
		return err
	})
	require.NoError(t, err)

	anomalies, err = s.OwnershipAnomalies(context.Background())
	require.NoError(t, err)
	require.Len(t, anomalies, 1)
	assert.Equal(t, scope, anomalies[0].Scope)
	assert.Equal(t, int64(0), anomalies[0].Owners)
	assert.Equal(t, int64(1), anomalies[0].Members)
}

func TestMemoryTrailKeepsDetails(t *testing.T) {
	ctx := context.Background()
	conn, s := newMemoryStore(t)
	wsID, owner := seedWorkspace(t, s)

	err := s.RunInTransaction(ctx, func(tx membership.Tx) error {
		return tx.AppendTrail(ctx, &models.TrailLog{
			ID:        uuid.New(),
			Type:      membership.JOB_MEMBER_ADDED,
			ScopeType: types.SCOPE_WORKSPACE,
			ScopeID:   wsID,
			TargetID:  &owner.ID,
			Details:   types.JSONB{"role": "owner"},
		})
	})
	require.NoError(t, err)

	var trail []models.TrailLog
	require.NoError(t, conn.Find(&trail).Error)
	require.Len(t, trail, 1)
	assert.Equal(t, "owner", trail[0].Details["role"])
	assert.Equal(t, owner.ID, *trail[0].TargetID)
}
