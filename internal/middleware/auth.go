package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/krisapplegate/kiro-simple-tracker-sub000/internal/auth"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/response"
)

const (
	CtxClaimsKey   = "authClaims"
	CtxIdentityKey = "requestIdentity"
)

// Auth enforces JWT authentication using the supplied JWT service. A missing
// bearer token and a failing one map to distinct 401 codes.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrAuthMissing)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrAuthInvalid)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext extracts verified claims placed by Auth.
func ClaimsFromContext(c *gin.Context) (*iauth.Claims, bool) {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*iauth.Claims)
	return claims, ok && claims != nil
}

// IdentityFromContext extracts the resolved identity placed by Workspace.
func IdentityFromContext(c *gin.Context) (*iauth.Identity, bool) {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*iauth.Identity)
	return identity, ok && identity != nil
}
