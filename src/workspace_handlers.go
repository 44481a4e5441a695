package main

import (
	"net/http"

	"taskhub/src/controllers"
	"taskhub/src/lib"
	"taskhub/src/middlewares"
	"taskhub/src/types"

	"github.com/gin-gonic/gin"
)

func workspaceHandlers(g *gin.RouterGroup, c *controllers.Membership, resolver middlewares.MembershipResolver, cache *lib.RoleCache) *gin.RouterGroup {
	g.POST("/workspaces", func(ctx *gin.Context) {
		var body types.CreateWorkspaceRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ws, status, err := c.CreateWorkspace(ctx, &body)
		respond(ctx, status, err, "workspace", ws)
	})

	ws := g.Group("/workspaces/:workspaceId", middlewares.ResolveMember(resolver, cache, types.SCOPE_WORKSPACE))
	ws.DELETE("", func(ctx *gin.Context) {
		result, status, err := c.DeleteWorkspace(ctx)
		respond(ctx, status, err, "result", result)
	})
	memberHandlers(ws, c)
	teamHandlers(ws, c, resolver, cache)
	projectHandlers(ws, c, resolver, cache)
	return g
}
