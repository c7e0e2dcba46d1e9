package api

import (
	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/handlers"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/middleware"
)

func registerUserRoutes(workspace *gin.RouterGroup, userHandler *handlers.UserHandler) {
	users := workspace.Group("/users")
	{
		users.GET("", middleware.RequirePermission("users.read"), userHandler.List)
		users.POST("", middleware.RequirePermission("users.create"), userHandler.Create)
		users.POST("/invite", middleware.RequirePermission("users.create"), userHandler.Invite)
		users.GET("/:id", middleware.RequireUserManagement(), userHandler.Get)
		users.PUT("/:id", middleware.RequireUserManagement(), userHandler.Update)
		users.DELETE("/:id", middleware.RequirePermission("users.delete"), userHandler.Delete)
		users.POST("/:id/roles", middleware.RequirePermission("users.manage"), userHandler.AssignRole)
		users.DELETE("/:id/roles/:roleId", middleware.RequirePermission("users.manage"), userHandler.RemoveRole)
	}
}
