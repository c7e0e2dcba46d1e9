package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/app"
	iauth "github.com/krisapplegate/kiro-simple-tracker-sub000/internal/auth"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/handlers"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/middleware"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, store *permissions.Store, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if store == nil {
		return nil, fmt.Errorf("permission store must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	resolver, err := iauth.NewIdentityResolver(db, store)
	if err != nil {
		return nil, err
	}

	authHandler, err := handlers.NewAuthHandler(db, jwt)
	if err != nil {
		return nil, err
	}

	// Public auth routes
	public := r.Group("/api/v1/auth")
	{
		public.POST("/login", authHandler.Login)
	}

	requireAuth := middleware.Auth(jwt)
	requireWorkspace := middleware.Workspace(resolver)

	api := r.Group("/api/v1")
	api.Use(requireAuth)
	api.Use(requireWorkspace)

	api.GET("/auth/me", authHandler.Me)

	tenantService, err := services.NewTenantService(db, store)
	if err != nil {
		return nil, err
	}
	tenantHandler, err := handlers.NewTenantHandler(tenantService)
	if err != nil {
		return nil, err
	}
	registerTenantRoutes(api, tenantHandler)

	// Workspace scoped resources. The :tenantId segment participates in
	// workspace resolution, so the effective identity always belongs to the
	// tenant being operated on.
	workspace := api.Group("/workspaces/:tenantId")

	userService, err := services.NewUserService(db, store)
	if err != nil {
		return nil, err
	}
	userHandler, err := handlers.NewUserHandler(userService)
	if err != nil {
		return nil, err
	}
	registerUserRoutes(workspace, userHandler)

	roleService, err := services.NewRoleService(db, store)
	if err != nil {
		return nil, err
	}
	roleHandler, err := handlers.NewRoleHandler(roleService)
	if err != nil {
		return nil, err
	}
	registerRoleRoutes(workspace, roleHandler)

	groupService, err := services.NewGroupService(db, store)
	if err != nil {
		return nil, err
	}
	groupHandler, err := handlers.NewGroupHandler(groupService)
	if err != nil {
		return nil, err
	}
	registerGroupRoutes(workspace, groupHandler)

	objectService, err := services.NewObjectService(db)
	if err != nil {
		return nil, err
	}
	objectHandler, err := handlers.NewObjectHandler(objectService)
	if err != nil {
		return nil, err
	}
	registerObjectRoutes(workspace, objectHandler, store)

	return r, nil
}
