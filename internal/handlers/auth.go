package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/krisapplegate/kiro-simple-tracker-sub000/internal/auth"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/crypto"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/metrics"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/response"
)

// AuthHandler issues access tokens and exposes the resolved identity.
type AuthHandler struct {
	db  *gorm.DB
	jwt *iauth.JWTService
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	TenantID string `json:"tenant_id" validate:"omitempty,uuid4"`
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwt *iauth.JWTService) (*AuthHandler, error) {
	if db == nil || jwt == nil {
		return nil, errors.ErrInternalServer
	}
	return &AuthHandler{db: db, jwt: jwt}, nil
}

// POST /api/v1/auth/login
//
// The credential embeds the home tenant. When the email exists in several
// tenants the caller disambiguates with tenant_id; otherwise the single row wins.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if !bindAndValidate(c, &body) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	query := h.db.WithContext(requestContext(c)).Where("email = ?", email)
	if body.TenantID != "" {
		query = query.Where("tenant_id = ?", body.TenantID)
	}

	var users []models.User
	if err := query.Limit(2).Find(&users).Error; err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	if len(users) != 1 {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		if len(users) > 1 {
			response.Error(c, errors.NewBadRequest("email exists in multiple workspaces; tenant_id is required"))
			return
		}
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	user := users[0]
	if !user.IsActive || !crypto.VerifyPassword(user.Password, body.Password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInvalidCredentials)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Email:    user.Email,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	now := time.Now()
	_ = h.db.WithContext(requestContext(c)).Model(&user).Update("last_login_at", &now).Error

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"user": gin.H{
			"id":        user.ID,
			"tenant_id": user.TenantID,
			"email":     user.Email,
			"name":      user.Name,
		},
	})
}

// GET /api/v1/auth/me
//
// Echoes the effective identity with its permission names, which is what the
// UI consumes to render capabilities.
func (h *AuthHandler) Me(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	roles := make([]gin.H, 0, len(ident.Roles))
	for _, role := range ident.Roles {
		roles = append(roles, gin.H{
			"id":        role.ID,
			"name":      role.Name,
			"is_system": role.IsSystem,
		})
	}

	response.Success(c, http.StatusOK, gin.H{
		"tenant_id":   ident.TenantID,
		"user_id":     ident.UserID,
		"email":       ident.Email,
		"permissions": ident.PermissionNames(),
		"roles":       roles,
	})
}
