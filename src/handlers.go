package main

import (
	"net/http"

	"taskhub/src/controllers"
	"taskhub/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type memberParams struct {
	MemberID string `uri:"memberId" binding:"required,uuid"`
}

func respond(ctx *gin.Context, status int, err error, key string, value any) {
	if err != nil {
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(status, gin.H{key: value})
}

// memberHandlers mounts the membership routes on a group whose middleware resolved the scope.
func memberHandlers(g *gin.RouterGroup, c *controllers.Membership) *gin.RouterGroup {
	g.
		GET("/members", func(ctx *gin.Context) {
			members, status, err := c.ListMembers(ctx)
			respond(ctx, status, err, "members", members)
		}).
		POST("/members", func(ctx *gin.Context) {
			var body types.AddMemberRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			member, status, err := c.AddMember(ctx, &body)
			respond(ctx, status, err, "member", member)
		}).
		PATCH("/members/:memberId", func(ctx *gin.Context) {
			var params memberParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.UpdateMemberRoleRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			member, status, err := c.UpdateRole(ctx, uuid.MustParse(params.MemberID), &body)
			respond(ctx, status, err, "member", member)
		}).
		DELETE("/members/:memberId", func(ctx *gin.Context) {
			var params memberParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, status, err := c.RemoveMember(ctx, uuid.MustParse(params.MemberID))
			respond(ctx, status, err, "result", result)
		}).
		POST("/owner", func(ctx *gin.Context) {
			var body types.TransferOwnershipRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, status, err := c.TransferOwnership(ctx, &body)
			respond(ctx, status, err, "result", result)
		})
	return g
}
