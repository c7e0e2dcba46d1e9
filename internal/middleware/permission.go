package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/metrics"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/response"
)

// RequirePermission checks that the resolved identity holds the named
// permission. The identity's permission set is preloaded fail-closed, so a
// degraded lookup simply denies.
func RequirePermission(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			response.Error(c, errors.ErrAuthMissing)
			c.Abort()
			return
		}

		if !identity.HasPermission(name) {
			metrics.PermissionChecks.WithLabelValues(name, "denied").Inc()
			response.Error(c, errors.ErrPermissionDenied)
			c.Abort()
			return
		}

		metrics.PermissionChecks.WithLabelValues(name, "allowed").Inc()
		c.Next()
	}
}

// RequireObjectAccess defers to the permission store's ownership rules for the
// tracked object addressed by the :id route parameter.
func RequireObjectAccess(store *permissions.Store, action string) gin.HandlerFunc {
	permission := permissions.Name(permissions.ResourceObjects, action)
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			response.Error(c, errors.ErrAuthMissing)
			c.Abort()
			return
		}

		objectID := strings.TrimSpace(c.Param("id"))
		if objectID == "" {
			response.Error(c, errors.NewBadRequest("object id is required"))
			c.Abort()
			return
		}

		if !store.CanAccessObject(c.Request.Context(), identity.UserID, identity.TenantID, objectID, action) {
			metrics.PermissionChecks.WithLabelValues(permission, "denied").Inc()
			response.Error(c, errors.ErrPermissionDenied)
			c.Abort()
			return
		}

		metrics.PermissionChecks.WithLabelValues(permission, "allowed").Inc()
		c.Next()
	}
}

// RequireUserManagement enforces users.manage only when the acting user
// targets a different user id; every identity may manage its own record.
func RequireUserManagement() gin.HandlerFunc {
	manage := permissions.Name(permissions.ResourceUsers, permissions.ActionManage)
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			response.Error(c, errors.ErrAuthMissing)
			c.Abort()
			return
		}

		targetID := strings.TrimSpace(c.Param("id"))
		if targetID != "" && targetID == identity.UserID {
			c.Next()
			return
		}

		if !identity.HasPermission(manage) {
			metrics.PermissionChecks.WithLabelValues(manage, "denied").Inc()
			response.Error(c, errors.ErrPermissionDenied)
			c.Abort()
			return
		}

		metrics.PermissionChecks.WithLabelValues(manage, "allowed").Inc()
		c.Next()
	}
}
