package middlewares

import (
	"context"
	"errors"
	"log"
	"net/http"

	"taskhub/src/errs"
	"taskhub/src/lib"
	"taskhub/src/models"
	"taskhub/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	WORKSPACE_ID_KEY     = "workspace_id"
	WORKSPACE_MEMBER_KEY = "workspace_member"
	MEMBERSHIP_KEY       = "membership"
)

var scopeParams = map[types.ScopeType]string{
	types.SCOPE_WORKSPACE: "workspaceId",
	types.SCOPE_TEAM:      "teamId",
	types.SCOPE_PROJECT:   "projectId",
}

type MembershipResolver interface {
	ResolveMembership(ctx context.Context, workspaceID uuid.UUID, scope types.Scope, userID uuid.UUID) (*models.Membership, error)
}

// ResolveMember loads the caller's membership in the scope named by the route and stores it
// under MEMBERSHIP_KEY. A team or project outside the route's workspace is not found. Workspace scope resolution also sets WORKSPACE_MEMBER_KEY.
// A nil cache resolves every request against the store.
func ResolveMember(resolver MembershipResolver, cache *lib.RoleCache, scopeType types.ScopeType) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		workspaceID, err := uuid.Parse(ctx.Param("workspaceId"))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid workspace id"})
			return
		}
		scopeID, err := uuid.Parse(ctx.Param(scopeParams[scopeType]))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + string(scopeType) + " id"})
			return
		}
		scope := types.Scope{Type: scopeType, ID: scopeID}
		userID := UserID(ctx)

		m := cachedMembership(ctx, cache, workspaceID, scope, userID)
		if m == nil {
			m, err = resolver.ResolveMembership(ctx, workspaceID, scope, userID)
			if errors.Is(err, errs.ErrMemberNotFound) {
				ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not a member of this " + string(scopeType)})
				return
			}
			if err != nil {
				ctx.AbortWithStatusJSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
				return
			}
			if cache != nil {
				if err := cache.Set(ctx, workspaceID, userID, m); err != nil {
					log.Printf("[cache] Error caching role for %s: %s\n", scope.String(), err.Error())
				}
			}
		}

		ctx.Set(WORKSPACE_ID_KEY, workspaceID)
		if scopeType == types.SCOPE_WORKSPACE {
			ctx.Set(WORKSPACE_MEMBER_KEY, m)
		}
		ctx.Set(MEMBERSHIP_KEY, m)
		ctx.Next()
	}
}

func cachedMembership(ctx context.Context, cache *lib.RoleCache, workspaceID uuid.UUID, scope types.Scope, userID uuid.UUID) *models.Membership {
	if cache == nil {
		return nil
	}
	m, err := cache.Get(ctx, workspaceID, scope, userID)
	if err != nil {
		log.Printf("[cache] Error reading role for %s: %s\n", scope.String(), err.Error())
		return nil
	}
	return m
}

func Acting(ctx *gin.Context) *models.Membership {
	v, _ := ctx.Get(MEMBERSHIP_KEY)
	m, _ := v.(*models.Membership)
	return m
}

func ActingWorkspaceMember(ctx *gin.Context) *models.Membership {
	v, _ := ctx.Get(WORKSPACE_MEMBER_KEY)
	m, _ := v.(*models.Membership)
	return m
}

func WorkspaceID(ctx *gin.Context) uuid.UUID {
	v, _ := ctx.Get(WORKSPACE_ID_KEY)
	id, _ := v.(uuid.UUID)
	return id
}
