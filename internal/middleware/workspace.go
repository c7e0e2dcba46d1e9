package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/krisapplegate/kiro-simple-tracker-sub000/internal/auth"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/response"
)

// TenantHeader carries a caller-supplied workspace override.
const TenantHeader = "X-Tenant-ID"

// Workspace resolves the effective identity for the request, honouring the
// tenant override precedence: header over path parameter over the credential's
// embedded tenant. It must run after Auth.
func Workspace(resolver *iauth.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			response.Error(c, errors.ErrAuthMissing)
			c.Abort()
			return
		}

		requested := strings.TrimSpace(c.GetHeader(TenantHeader))
		if requested == "" {
			requested = strings.TrimSpace(c.Param("tenantId"))
		}

		identity, err := resolver.Resolve(c.Request.Context(), claims, requested)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(CtxIdentityKey, identity)
		c.Next()
	}
}
