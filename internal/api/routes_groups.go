package api

import (
	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/handlers"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/middleware"
)

func registerGroupRoutes(workspace *gin.RouterGroup, groupHandler *handlers.GroupHandler) {
	groups := workspace.Group("/groups")
	{
		groups.GET("", middleware.RequirePermission("groups.read"), groupHandler.List)
		groups.POST("", middleware.RequirePermission("groups.create"), groupHandler.Create)
		groups.GET("/:id", middleware.RequirePermission("groups.read"), groupHandler.Get)
		groups.PUT("/:id", middleware.RequirePermission("groups.update"), groupHandler.Update)
		groups.DELETE("/:id", middleware.RequirePermission("groups.delete"), groupHandler.Delete)
		groups.POST("/:id/members", middleware.RequirePermission("groups.manage"), groupHandler.AddMember)
		groups.DELETE("/:id/members/:userId", middleware.RequirePermission("groups.manage"), groupHandler.RemoveMember)
		groups.POST("/:id/roles", middleware.RequirePermission("groups.manage"), groupHandler.AssignRole)
		groups.DELETE("/:id/roles/:roleId", middleware.RequirePermission("groups.manage"), groupHandler.RemoveRole)
	}
}
