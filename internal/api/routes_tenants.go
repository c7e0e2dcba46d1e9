package api

import (
	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/handlers"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/middleware"
)

// Tenant lifecycle is a platform operator concern, gated on the one
// permission only super_admin holds.
func registerTenantRoutes(api *gin.RouterGroup, tenantHandler *handlers.TenantHandler) {
	tenants := api.Group("/tenants")
	{
		tenants.GET("", middleware.RequirePermission("system.admin"), tenantHandler.List)
		tenants.POST("", middleware.RequirePermission("system.admin"), tenantHandler.Create)
		// The param is deliberately not :tenantId so tenant administration
		// does not route workspace resolution into the target tenant.
		tenants.GET("/:id", middleware.RequirePermission("system.admin"), tenantHandler.Get)
		tenants.PUT("/:id", middleware.RequirePermission("system.admin"), tenantHandler.Update)
		tenants.DELETE("/:id", middleware.RequirePermission("system.admin"), tenantHandler.Delete)
	}
}
