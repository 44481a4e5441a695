package membership

import (
	"context"

	"taskhub/src/errs"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
)

func teamAndProject(ctx context.Context, tx Tx, workspaceID, teamID, projectID uuid.UUID) error {
	team, err := tx.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.WorkspaceID != workspaceID {
		return errs.ErrTeamNotFound
	}
	project, err := tx.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project.WorkspaceID != workspaceID {
		return errs.ErrProjectNotFound
	}
	return nil
}

// AssignTeam links a team to a project of the same workspace. Memberships are not copied.
func (s *Service) AssignTeam(ctx context.Context, workspaceID, teamID, projectID uuid.UUID) (*models.ProjectTeam, error) {
	var link *models.ProjectTeam
	err := s.run(ctx, func(tx Tx) error {
		if err := teamAndProject(ctx, tx, workspaceID, teamID, projectID); err != nil {
			return err
		}
		exists, err := tx.HasProjectTeam(ctx, projectID, teamID)
		if err != nil {
			return err
		}
		if exists {
			return errs.ErrAlreadyAssigned
		}
		link = &models.ProjectTeam{ProjectID: projectID, TeamID: teamID, CreatedAt: s.now()}
		if err := tx.CreateProjectTeam(ctx, link); err != nil {
			return err
		}
		return s.trail(ctx, tx, JOB_TEAM_ASSIGNED, nil, types.ProjectScope(projectID), &teamID, nil)
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, Job{Name: JOB_TEAM_ASSIGNED, Scope: types.ProjectScope(projectID), Payload: types.JSONB{
		"team_id": teamID.String(),
	}})
	return link, nil
}

type UnassignResult struct {
	UnassignedProject int64 `json:"unassigned_project"`
	// set only when members were removed with the link
	RemovedMembers []int64 `json:"removed_members,omitempty"`
}

// UnassignTeam removes the link between a team and a project. With removeMembers, the
// project memberships held by the team's members are removed too, unless that would leave the
// project without members.
func (s *Service) UnassignTeam(ctx context.Context, workspaceID, teamID, projectID uuid.UUID, removeMembers bool) (*UnassignResult, error) {
	projectScope := types.ProjectScope(projectID)

	var result UnassignResult
	err := s.run(ctx, func(tx Tx) error {
		if err := teamAndProject(ctx, tx, workspaceID, teamID, projectID); err != nil {
			return err
		}
		linked, err := tx.HasProjectTeam(ctx, projectID, teamID)
		if err != nil {
			return err
		}
		if !linked {
			return errs.ErrAssignmentNotFound
		}

		var overlap []uuid.UUID
		if removeMembers {
			teamMembers, err := tx.ListMembers(ctx, types.TeamScope(teamID))
			if err != nil {
				return err
			}
			projectMembers, err := tx.ListMembers(ctx, projectScope)
			if err != nil {
				return err
			}
			inTeam := subjectSet(teamMembers)
			for _, pm := range projectMembers {
				if inTeam[pm.SubjectID] {
					overlap = append(overlap, pm.ID)
				}
			}
			if len(overlap) == len(projectMembers) {
				return errs.ErrUnassignEmptiesProj
			}
		}

		n, err := tx.DeleteProjectTeam(ctx, projectID, teamID)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.ErrAssignmentNotFound
		}
		result.UnassignedProject = n

		if removeMembers {
			if _, err := s.handOver(ctx, tx, projectScope, overlap); err != nil {
				return err
			}
			var removed int64
			if len(overlap) > 0 {
				if removed, err = tx.DeleteMembers(ctx, projectScope, overlap...); err != nil {
					return err
				}
			}
			result.RemovedMembers = []int64{removed}
		}
		return s.trail(ctx, tx, JOB_TEAM_UNASSIGNED, nil, projectScope, &teamID, types.JSONB{
			"remove_members":  removeMembers,
			"members_removed": len(overlap),
		})
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, Job{Name: JOB_TEAM_UNASSIGNED, Scope: projectScope, Payload: types.JSONB{
		"team_id":        teamID.String(),
		"remove_members": removeMembers,
	}})
	return &result, nil
}

func (s *Service) ListAssignedTeams(ctx context.Context, workspaceID, projectID uuid.UUID) ([]uuid.UUID, error) {
	var teamIDs []uuid.UUID
	err := s.run(ctx, func(tx Tx) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		if project.WorkspaceID != workspaceID {
			return errs.ErrProjectNotFound
		}
		teamIDs, err = tx.ListTeamIDsForProject(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return teamIDs, nil
}
