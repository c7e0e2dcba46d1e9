package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	iauth "github.com/krisapplegate/kiro-simple-tracker-sub000/internal/auth"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// identity pulls the resolved request identity placed by the workspace middleware.
func identity(c *gin.Context) (*iauth.Identity, bool) {
	return middleware.IdentityFromContext(c)
}
