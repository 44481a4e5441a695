package membership

import (
	"context"

	"taskhub/src/errs"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
)

// RemoveWorkspaceMember removes a workspace membership together with every team and project
// membership it holds in that workspace. Where the removed member owned a team or project that
// keeps other members, ownership passes to a successor. The same holds for the workspace itself
// when its owner leaves.
func (s *Service) RemoveWorkspaceMember(ctx context.Context, workspaceID, requesterID, targetID uuid.UUID) (*RemoveResult, error) {
	scope := types.WorkspaceScope(workspaceID)

	var result RemoveResult
	var removed models.Membership
	err := s.run(ctx, func(tx Tx) error {
		if _, err := tx.GetWorkspace(ctx, workspaceID); err != nil {
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
			result.OwnershipsHandedOver++
			result.NewOwner = promoted
		}

		held, err := tx.ListSubjectMemberships(ctx, workspaceID, target.ID)
		if err != nil {
			return err
		}
		for _, m := range held {
			promoted, err := s.handOver(ctx, tx, m.Scope, []uuid.UUID{m.ID})
			if err != nil {
				return err
			}
			if promoted != nil {
				result.OwnershipsHandedOver++
			}
			n, err := tx.DeleteMembers(ctx, m.Scope, m.ID)
			if err != nil {
				return err
			}
			if m.Scope.Type == types.SCOPE_TEAM {
				result.TeamMembershipsRemoved += n
			} else {
				result.ProjectMembershipsRemoved += n
			}
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
		return s.trail(ctx, tx, JOB_MEMBER_REMOVED, &requester.ID, scope, &target.ID, types.JSONB{
			"team_memberships_removed":    result.TeamMembershipsRemoved,
			"project_memberships_removed": result.ProjectMembershipsRemoved,
		})
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, removalJobs(scope, removed, result.NewOwner)...)
	return &result, nil
}

type DeleteTeamResult struct {
	TeamDeleted                    int64 `json:"team_deleted"`
	TeamMembersDeletedFromProjects int64 `json:"team_members_deleted_from_projects"`
	ProjectLinksRemoved            int64 `json:"project_links_removed"`
}

// DeleteTeam deletes a team, its links to projects and the project memberships held by its
// members in those projects. Only the team owner may do it.
func (s *Service) DeleteTeam(ctx context.Context, workspaceID, teamID, requesterID uuid.UUID) (*DeleteTeamResult, error) {
	scope := types.TeamScope(teamID)

	var result DeleteTeamResult
	err := s.run(ctx, func(tx Tx) error {
		team, err := tx.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if team.WorkspaceID != workspaceID {
			return errs.ErrTeamNotFound
		}
		members, err := loadMembers(ctx, tx, scope)
		if err != nil {
			return err
		}
		requester := findMember(members, requesterID)
		if requester == nil || requester.Role != types.ROLE_OWNER {
			return errs.ErrNotOwner
		}

		subjects := subjectSet(members)
		projectIDs, err := tx.ListProjectIDsForTeam(ctx, teamID)
		if err != nil {
			return err
		}
		for _, projectID := range projectIDs {
			projectScope := types.ProjectScope(projectID)
			projectMembers, err := tx.ListMembers(ctx, projectScope)
			if err != nil {
				return err
			}
			var overlap []uuid.UUID
			for _, pm := range projectMembers {
				if subjects[pm.SubjectID] {
					overlap = append(overlap, pm.ID)
				}
			}
			if len(overlap) == 0 {
				continue
			}
			if _, err := s.handOver(ctx, tx, projectScope, overlap); err != nil {
				return err
			}
			n, err := tx.DeleteMembers(ctx, projectScope, overlap...)
			if err != nil {
				return err
			}
			result.TeamMembersDeletedFromProjects += n
		}

		links, err := tx.DeleteProjectTeamsForTeam(ctx, teamID)
		if err != nil {
			return err
		}
		result.ProjectLinksRemoved = links
		if _, err := tx.DeleteAllMembers(ctx, scope); err != nil {
			return err
		}
		deleted, err := tx.DeleteTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return errs.ErrTeamNotFound
		}
		result.TeamDeleted = deleted
		return s.trail(ctx, tx, JOB_TEAM_DELETED, &requester.ID, scope, nil, types.JSONB{
			"project_members_removed": result.TeamMembersDeletedFromProjects,
			"project_links_removed":   result.ProjectLinksRemoved,
		})
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, Job{Name: JOB_TEAM_DELETED, Scope: scope, Payload: types.JSONB{
		"workspace_id": workspaceID.String(),
	}})
	return &result, nil
}

type DeleteProjectResult struct {
	ProjectDeleted      int64 `json:"project_deleted"`
	MembersRemoved      int64 `json:"members_removed"`
	ProjectLinksRemoved int64 `json:"project_links_removed"`
}

// DeleteProject deletes a project with its memberships and team links. Only the project owner
// may do it.
func (s *Service) DeleteProject(ctx context.Context, workspaceID, projectID, requesterID uuid.UUID) (*DeleteProjectResult, error) {
	scope := types.ProjectScope(projectID)

	var result DeleteProjectResult
	err := s.run(ctx, func(tx Tx) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		if project.WorkspaceID != workspaceID {
			return errs.ErrProjectNotFound
		}
		members, err := loadMembers(ctx, tx, scope)
		if err != nil {
			return err
		}
		requester := findMember(members, requesterID)
		if requester == nil || requester.Role != types.ROLE_OWNER {
			return errs.ErrNotOwner
		}

		n, err := deleteProjectTree(ctx, tx, projectID)
		if err != nil {
			return err
		}
		result = n
		if result.ProjectDeleted == 0 {
			return errs.ErrProjectNotFound
		}
		return s.trail(ctx, tx, JOB_PROJECT_DELETED, &requester.ID, scope, nil, types.JSONB{
			"members_removed": result.MembersRemoved,
		})
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, Job{Name: JOB_PROJECT_DELETED, Scope: scope, Payload: types.JSONB{
		"workspace_id": workspaceID.String(),
	}})
	return &result, nil
}

func deleteProjectTree(ctx context.Context, tx Tx, projectID uuid.UUID) (DeleteProjectResult, error) {
	var result DeleteProjectResult
	var err error
	if result.MembersRemoved, err = tx.DeleteAllMembers(ctx, types.ProjectScope(projectID)); err != nil {
		return result, err
	}
	if result.ProjectLinksRemoved, err = tx.DeleteProjectTeamsForProject(ctx, projectID); err != nil {
		return result, err
	}
	if result.ProjectDeleted, err = tx.DeleteProject(ctx, projectID); err != nil {
		return result, err
	}
	return result, nil
}

type DeleteWorkspaceResult struct {
	WorkspaceDeleted int64 `json:"workspace_deleted"`
	TeamsDeleted     int64 `json:"teams_deleted"`
	ProjectsDeleted  int64 `json:"projects_deleted"`
	MembersRemoved   int64 `json:"members_removed"`
}

// DeleteWorkspace deletes a workspace and everything inside it. Only the workspace owner may
// do it.
func (s *Service) DeleteWorkspace(ctx context.Context, workspaceID, requesterID uuid.UUID) (*DeleteWorkspaceResult, error) {
	scope := types.WorkspaceScope(workspaceID)

	var result DeleteWorkspaceResult
	err := s.run(ctx, func(tx Tx) error {
		if _, err := tx.GetWorkspace(ctx, workspaceID); err != nil {
			return err
		}
		members, err := loadMembers(ctx, tx, scope)
		if err != nil {
			return err
		}
		requester := findMember(members, requesterID)
		if requester == nil || requester.Role != types.ROLE_OWNER {
			return errs.ErrNotOwner
		}

		projectIDs, err := tx.ListProjectIDs(ctx, workspaceID)
		if err != nil {
			return err
		}
		for _, projectID := range projectIDs {
			n, err := deleteProjectTree(ctx, tx, projectID)
			if err != nil {
				return err
			}
			result.ProjectsDeleted += n.ProjectDeleted
			result.MembersRemoved += n.MembersRemoved
		}

		teamIDs, err := tx.ListTeamIDs(ctx, workspaceID)
		if err != nil {
			return err
		}
		for _, teamID := range teamIDs {
			if _, err := tx.DeleteProjectTeamsForTeam(ctx, teamID); err != nil {
				return err
			}
			n, err := tx.DeleteAllMembers(ctx, types.TeamScope(teamID))
			if err != nil {
				return err
			}
			result.MembersRemoved += n
			deleted, err := tx.DeleteTeam(ctx, teamID)
			if err != nil {
				return err
			}
			result.TeamsDeleted += deleted
		}

		n, err := tx.DeleteAllMembers(ctx, scope)
		if err != nil {
			return err
		}
		result.MembersRemoved += n
		if result.WorkspaceDeleted, err = tx.DeleteWorkspace(ctx, workspaceID); err != nil {
			return err
		}
		if result.WorkspaceDeleted == 0 {
			return errs.ErrWorkspaceNotFound
		}
		return s.trail(ctx, tx, JOB_WORKSPACE_DELETED, &requester.ID, scope, nil, types.JSONB{
			"teams_deleted":    result.TeamsDeleted,
			"projects_deleted": result.ProjectsDeleted,
		})
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, Job{Name: JOB_WORKSPACE_DELETED, Scope: scope})
	return &result, nil
}
