package main

import (
	"net/http"

	"taskhub/src/controllers"
	"taskhub/src/lib"
	"taskhub/src/middlewares"
	"taskhub/src/types"

	"github.com/gin-gonic/gin"
)

func teamHandlers(ws *gin.RouterGroup, c *controllers.Membership, resolver middlewares.MembershipResolver, cache *lib.RoleCache) *gin.RouterGroup {
	ws.POST("/teams", func(ctx *gin.Context) {
		var body types.CreateTeamRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		team, status, err := c.CreateTeam(ctx, &body)
		respond(ctx, status, err, "team", team)
	})

	team := ws.Group("/teams/:teamId", middlewares.ResolveMember(resolver, cache, types.SCOPE_TEAM))
	team.DELETE("", func(ctx *gin.Context) {
		result, status, err := c.DeleteTeam(ctx)
		respond(ctx, status, err, "result", result)
	})
	return memberHandlers(team, c)
}
