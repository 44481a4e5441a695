package main

import (
	"net/http"

	"taskhub/src/controllers"

	"github.com/gin-gonic/gin"
)

func userHandlers(g *gin.RouterGroup, c *controllers.Membership) *gin.RouterGroup {
	g.POST("/users/sync", func(ctx *gin.Context) {
		var body struct {
			Name  string `json:"name"`
			Email string `json:"email" binding:"required,email"`
		}
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, status, err := c.SyncUser(ctx, body.Name, body.Email)
		respond(ctx, status, err, "user", user)
	})
	return g
}
