package main

import (
	"net/http"

	"taskhub/src/controllers"
	"taskhub/src/lib"
	"taskhub/src/middlewares"
	"taskhub/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type assignTeamParams struct {
	TeamID string `uri:"teamId" binding:"required,uuid"`
}

func projectHandlers(ws *gin.RouterGroup, c *controllers.Membership, resolver middlewares.MembershipResolver, cache *lib.RoleCache) *gin.RouterGroup {
	ws.POST("/projects", func(ctx *gin.Context) {
		var body types.CreateProjectRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		project, status, err := c.CreateProject(ctx, &body)
		respond(ctx, status, err, "project", project)
	})

	project := ws.Group("/projects/:projectId", middlewares.ResolveMember(resolver, cache, types.SCOPE_PROJECT))
	project.
		DELETE("", func(ctx *gin.Context) {
			result, status, err := c.DeleteProject(ctx)
			respond(ctx, status, err, "result", result)
		}).
		GET("/teams", func(ctx *gin.Context) {
			teamIDs, status, err := c.ListAssignedTeams(ctx)
			respond(ctx, status, err, "teams", teamIDs)
		}).
		POST("/teams/:teamId", func(ctx *gin.Context) {
			var params assignTeamParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			link, status, err := c.AssignTeam(ctx, uuid.MustParse(params.TeamID))
			respond(ctx, status, err, "assignment", link)
		}).
		DELETE("/teams/:teamId", func(ctx *gin.Context) {
			var params assignTeamParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var query types.UnassignTeamQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, status, err := c.UnassignTeam(ctx, uuid.MustParse(params.TeamID), query.RemoveMembers)
			respond(ctx, status, err, "result", result)
		})
	return memberHandlers(project, c)
}
