package api

import (
	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/handlers"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/middleware"
)

func registerRoleRoutes(workspace *gin.RouterGroup, roleHandler *handlers.RoleHandler) {
	roles := workspace.Group("/roles")
	{
		roles.GET("", middleware.RequirePermission("roles.read"), roleHandler.List)
		roles.POST("", middleware.RequirePermission("roles.create"), roleHandler.Create)
		roles.GET("/:id", middleware.RequirePermission("roles.read"), roleHandler.Get)
		roles.PUT("/:id", middleware.RequirePermission("roles.update"), roleHandler.Update)
		roles.DELETE("/:id", middleware.RequirePermission("roles.delete"), roleHandler.Delete)
		roles.PUT("/:id/permissions", middleware.RequirePermission("roles.manage"), roleHandler.SetPermissions)
	}

	workspace.GET("/permissions", middleware.RequirePermission("roles.read"), roleHandler.ListCatalog)
}
