package controllers

import (
	"log"
	"net/http"

	"taskhub/src/errs"
	"taskhub/src/lib"
	"taskhub/src/membership"
	"taskhub/src/middlewares"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Membership drives the membership engine for the scope resolved by middlewares.ResolveMember.
// Authorization of add, role change and transfer happens here against the acting membership.
type Membership struct {
	svc   *membership.Service
	cache *lib.RoleCache
}

func NewMembership(svc *membership.Service, cache *lib.RoleCache) *Membership {
	return &Membership{svc: svc, cache: cache}
}

func (c *Membership) invalidate(ctx *gin.Context) {
	if c.cache == nil {
		return
	}
	workspaceID := middlewares.WorkspaceID(ctx)
	if err := c.cache.Invalidate(ctx, workspaceID); err != nil {
		log.Printf("[cache] Error invalidating roles for workspace %s: %s\n", workspaceID.String(), err.Error())
	}
}

func status(err error) int {
	if err == nil {
		return http.StatusOK
	}
	s := errs.HTTPStatus(err)
	if s == http.StatusInternalServerError {
		log.Printf("Internal error: %s\n", err.Error())
	}
	return s
}

func requireManager(acting *models.Membership) error {
	if acting == nil || !acting.Role.Manager() {
		return errs.ErrNotManager
	}
	return nil
}

func (c *Membership) ListMembers(ctx *gin.Context) ([]models.Membership, int, error) {
	members, err := c.svc.ListMembers(ctx, middlewares.Acting(ctx).Scope)
	return members, status(err), err
}

func (c *Membership) AddMember(ctx *gin.Context, body *types.AddMemberRequestBody) (*models.Membership, int, error) {
	acting := middlewares.Acting(ctx)
	if err := requireManager(acting); err != nil {
		return nil, status(err), err
	}
	subjectID, err := uuid.Parse(body.MemberRef)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	added, err := c.svc.AddMember(ctx, acting.Scope, subjectID)
	if err != nil {
		return nil, status(err), err
	}
	c.invalidate(ctx)
	return added, http.StatusCreated, nil
}

func (c *Membership) UpdateRole(ctx *gin.Context, memberID uuid.UUID, body *types.UpdateMemberRoleRequestBody) (*models.Membership, int, error) {
	acting := middlewares.Acting(ctx)
	if err := requireManager(acting); err != nil {
		return nil, status(err), err
	}
	role, err := types.ParseRole(body.Role)
	if err != nil {
		return nil, http.StatusBadRequest, errs.ErrInvalidRole
	}
	updated, err := c.svc.UpdateRole(ctx, acting.Scope, memberID, role)
	if err != nil {
		return nil, status(err), err
	}
	c.invalidate(ctx)
	return updated, http.StatusOK, nil
}

// RemoveMember removes memberID, or lets the caller leave when memberID is their own membership.
func (c *Membership) RemoveMember(ctx *gin.Context, memberID uuid.UUID) (*membership.RemoveResult, int, error) {
	acting := middlewares.Acting(ctx)
	result, err := c.svc.RemoveMember(ctx, acting.Scope, acting.ID, memberID)
	if err != nil {
		return nil, status(err), err
	}
	c.invalidate(ctx)
	return result, http.StatusOK, nil
}

func (c *Membership) TransferOwnership(ctx *gin.Context, body *types.TransferOwnershipRequestBody) (*membership.TransferResult, int, error) {
	acting := middlewares.Acting(ctx)
	if acting.Role != types.ROLE_OWNER {
		return nil, status(errs.ErrNotOwner), errs.ErrNotOwner
	}
	newOwnerID, err := uuid.Parse(body.NewOwnerID)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	result, err := c.svc.TransferOwnership(ctx, acting.Scope, acting.ID, newOwnerID)
	if err != nil {
		return nil, status(err), err
	}
	c.invalidate(ctx)
	return result, http.StatusOK, nil
}
