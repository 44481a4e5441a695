package controllers

import (
	"net/http"

	"taskhub/src/membership"
	"taskhub/src/middlewares"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (c *Membership) SyncUser(ctx *gin.Context, name, email string) (*models.User, int, error) {
	user, err := c.svc.SyncUser(ctx, middlewares.UserID(ctx), name, email)
	return user, status(err), err
}

func (c *Membership) CreateWorkspace(ctx *gin.Context, body *types.CreateWorkspaceRequestBody) (*models.Workspace, int, error) {
	ws, _, err := c.svc.CreateWorkspace(ctx, middlewares.UserID(ctx), body.Name, body.Description)
	if err != nil {
		return nil, status(err), err
	}
	return ws, http.StatusCreated, nil
}

func (c *Membership) DeleteWorkspace(ctx *gin.Context) (*membership.DeleteWorkspaceResult, int, error) {
	acting := middlewares.Acting(ctx)
	result, err := c.svc.DeleteWorkspace(ctx, acting.Scope.ID, acting.ID)
	if err != nil {
		return nil, status(err), err
	}
	c.invalidate(ctx)
	return result, http.StatusOK, nil
}

func (c *Membership) CreateTeam(ctx *gin.Context, body *types.CreateTeamRequestBody) (*models.Team, int, error) {
	wm := middlewares.ActingWorkspaceMember(ctx)
	team, _, err := c.svc.CreateTeam(ctx, wm.Scope.ID, wm.ID, body.Name)
	if err != nil {
		return nil, status(err), err
	}
	c.invalidate(ctx)
	return team, http.StatusCreated, nil
}

func (c *Membership) DeleteTeam(ctx *gin.Context) (*membership.DeleteTeamResult, int, error) {
	acting := middlewares.Acting(ctx)
	result, err := c.svc.DeleteTeam(ctx, middlewares.WorkspaceID(ctx), acting.Scope.ID, acting.ID)
	if err != nil {
		return nil, status(err), err
	}
	c.invalidate(ctx)
	return result, http.StatusOK, nil
}

func (c *Membership) CreateProject(ctx *gin.Context, body *types.CreateProjectRequestBody) (*models.Project, int, error) {
	wm := middlewares.ActingWorkspaceMember(ctx)
	project, _, err := c.svc.CreateProject(ctx, wm.Scope.ID, wm.ID, *body)
	if err != nil {
		return nil, status(err), err
	}
	c.invalidate(ctx)
	return project, http.StatusCreated, nil
}

func (c *Membership) DeleteProject(ctx *gin.Context) (*membership.DeleteProjectResult, int, error) {
	acting := middlewares.Acting(ctx)
	result, err := c.svc.DeleteProject(ctx, middlewares.WorkspaceID(ctx), acting.Scope.ID, acting.ID)
	if err != nil {
		return nil, status(err), err
	}
	c.invalidate(ctx)
	return result, http.StatusOK, nil
}

func (c *Membership) ListAssignedTeams(ctx *gin.Context) ([]uuid.UUID, int, error) {
	teamIDs, err := c.svc.ListAssignedTeams(ctx, middlewares.WorkspaceID(ctx), middlewares.Acting(ctx).Scope.ID)
	return teamIDs, status(err), err
}

func (c *Membership) AssignTeam(ctx *gin.Context, teamID uuid.UUID) (*models.ProjectTeam, int, error) {
	acting := middlewares.Acting(ctx)
	if err := requireManager(acting); err != nil {
		return nil, status(err), err
	}
	link, err := c.svc.AssignTeam(ctx, middlewares.WorkspaceID(ctx), teamID, acting.Scope.ID)
	if err != nil {
		return nil, status(err), err
	}
	return link, http.StatusCreated, nil
}

func (c *Membership) UnassignTeam(ctx *gin.Context, teamID uuid.UUID, removeMembers bool) (*membership.UnassignResult, int, error) {
	acting := middlewares.Acting(ctx)
	if err := requireManager(acting); err != nil {
		return nil, status(err), err
	}
	result, err := c.svc.UnassignTeam(ctx, middlewares.WorkspaceID(ctx), teamID, acting.Scope.ID, removeMembers)
	if err != nil {
		return nil, status(err), err
	}
	if removeMembers {
		c.invalidate(ctx)
	}
	return result, http.StatusOK, nil
}
