package api

import (
	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/handlers"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/middleware"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
)

// Object reads and writes go through the ownership aware gate rather than a
// plain permission check, so per-object rules apply on :id routes.
func registerObjectRoutes(workspace *gin.RouterGroup, objectHandler *handlers.ObjectHandler, store *permissions.Store) {
	objects := workspace.Group("/objects")
	{
		objects.GET("", middleware.RequirePermission("objects.read"), objectHandler.List)
		objects.POST("", middleware.RequirePermission("objects.create"), objectHandler.Create)
		objects.GET("/:id", middleware.RequireObjectAccess(store, "read"), objectHandler.Get)
		objects.PUT("/:id", middleware.RequireObjectAccess(store, "update"), objectHandler.Update)
		objects.DELETE("/:id", middleware.RequireObjectAccess(store, "delete"), objectHandler.Delete)
	}

	workspace.GET("/types", middleware.RequirePermission("types.read"), objectHandler.ListTypes)
	workspace.GET("/icons", middleware.RequirePermission("icons.read"), objectHandler.ListIcons)
}
