package membership

import (
	"context"
	"fmt"
	"strings"

	"taskhub/src/errs"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

func (s *Service) ownerMembership(scope types.Scope, subjectID uuid.UUID) *models.Membership {
	return &models.Membership{
		ID:        uuid.New(),
		Scope:     scope,
		SubjectID: subjectID,
		Role:      types.ROLE_OWNER,
		AddedAt:   s.now(),
	}
}

func workspaceSlug(name string, id uuid.UUID) string {
	base := slug.Make(name)
	if base == "" {
		base = "workspace"
	}
	return fmt.Sprintf("%s-%s", base, strings.Split(id.String(), "-")[0])
}

// CreateWorkspace creates a workspace and makes userID its owner.
func (s *Service) CreateWorkspace(ctx context.Context, userID uuid.UUID, name string, description *string) (*models.Workspace, *models.Membership, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, errs.New(errs.Invalid, "name is required")
	}

	var ws *models.Workspace
	var owner *models.Membership
	err := s.run(ctx, func(tx Tx) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}
		id := uuid.New()
		ws = &models.Workspace{
			ID:          id,
			Name:        name,
			Description: description,
			Slug:        workspaceSlug(name, id),
			UserID:      userID,
		}
		if err := tx.CreateWorkspace(ctx, ws); err != nil {
			return err
		}
		owner = s.ownerMembership(types.WorkspaceScope(id), userID)
		if err := tx.CreateMember(ctx, id, owner); err != nil {
			return err
		}
		return s.trail(ctx, tx, JOB_WORKSPACE_CREATED, &owner.ID, owner.Scope, nil, types.JSONB{"slug": ws.Slug})
	})
	if err != nil {
		return nil, nil, err
	}

	s.dispatch(ctx, Job{Name: JOB_WORKSPACE_CREATED, Scope: owner.Scope, Payload: types.JSONB{"user_id": userID.String()}})
	return ws, owner, nil
}

// creator checks that workspaceMemberID belongs to workspaceID.
func creator(ctx context.Context, tx Tx, workspaceID, workspaceMemberID uuid.UUID) error {
	if _, err := tx.GetWorkspace(ctx, workspaceID); err != nil {
		return err
	}
	wm, err := tx.GetWorkspaceMember(ctx, workspaceMemberID)
	if err != nil {
		return err
	}
	if wm.WorkspaceID != workspaceID {
		return errs.ErrWorkspaceMismatch
	}
	return nil
}

// CreateTeam creates a team in workspaceID owned by the creating workspace member.
func (s *Service) CreateTeam(ctx context.Context, workspaceID, workspaceMemberID uuid.UUID, name string) (*models.Team, *models.Membership, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, errs.New(errs.Invalid, "name is required")
	}

	var team *models.Team
	var owner *models.Membership
	err := s.run(ctx, func(tx Tx) error {
		if err := creator(ctx, tx, workspaceID, workspaceMemberID); err != nil {
			return err
		}
		team = &models.Team{
			ID:                uuid.New(),
			Name:              name,
			WorkspaceID:       workspaceID,
			WorkspaceMemberID: workspaceMemberID,
		}
		if err := tx.CreateTeam(ctx, team); err != nil {
			return err
		}
		owner = s.ownerMembership(types.TeamScope(team.ID), workspaceMemberID)
		if err := tx.CreateMember(ctx, workspaceID, owner); err != nil {
			return err
		}
		return s.trail(ctx, tx, JOB_TEAM_CREATED, &workspaceMemberID, owner.Scope, nil, nil)
	})
	if err != nil {
		return nil, nil, err
	}

	s.dispatch(ctx, Job{Name: JOB_TEAM_CREATED, Scope: owner.Scope, Payload: types.JSONB{"workspace_id": workspaceID.String()}})
	return team, owner, nil
}

// CreateProject creates a project in workspaceID owned by the creating workspace member.
func (s *Service) CreateProject(ctx context.Context, workspaceID, workspaceMemberID uuid.UUID, body types.CreateProjectRequestBody) (*models.Project, *models.Membership, error) {
	if strings.TrimSpace(body.Name) == "" {
		return nil, nil, errs.New(errs.Invalid, "name is required")
	}
	visibility := body.Visibility
	if visibility == "" {
		visibility = types.VISIBILITY_PRIVATE
	}

	var project *models.Project
	var owner *models.Membership
	err := s.run(ctx, func(tx Tx) error {
		if err := creator(ctx, tx, workspaceID, workspaceMemberID); err != nil {
			return err
		}
		project = &models.Project{
			ID:                uuid.New(),
			Name:              body.Name,
			Visibility:        visibility,
			BackgroundURL:     body.BackgroundURL,
			WorkspaceID:       workspaceID,
			WorkspaceMemberID: workspaceMemberID,
		}
		if err := tx.CreateProject(ctx, project); err != nil {
			return err
		}
		owner = s.ownerMembership(types.ProjectScope(project.ID), workspaceMemberID)
		if err := tx.CreateMember(ctx, workspaceID, owner); err != nil {
			return err
		}
		return s.trail(ctx, tx, JOB_PROJECT_CREATED, &workspaceMemberID, owner.Scope, nil, types.JSONB{"visibility": string(visibility)})
	})
	if err != nil {
		return nil, nil, err
	}

	s.dispatch(ctx, Job{Name: JOB_PROJECT_CREATED, Scope: owner.Scope, Payload: types.JSONB{"workspace_id": workspaceID.String()}})
	return project, owner, nil
}

// SyncUser records the authenticated user on first sight and returns the stored row.
func (s *Service) SyncUser(ctx context.Context, id uuid.UUID, name, email string) (*models.User, error) {
	var user *models.User
	err := s.run(ctx, func(tx Tx) error {
		existing, err := tx.GetUser(ctx, id)
		if err == nil {
			user = existing
			return nil
		}
		if !errs.IsKind(err, errs.NotFound) {
			return err
		}
		user = &models.User{ID: id, Name: name, Email: email}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
