package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/services"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/response"
)

// UserHandler manages tenant-scoped user accounts and their role grants.
type UserHandler struct {
	users *services.UserService
}

type createUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"required,min=1,max=120"`
	Password string   `json:"password" validate:"required,min=8"`
	RoleIDs  []string `json:"role_ids" validate:"omitempty,dive,uuid4"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	IsActive *bool   `json:"is_active"`
}

type inviteUserRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type roleGrantRequest struct {
	RoleID string `json:"role_id" validate:"required,uuid4"`
}

func NewUserHandler(users *services.UserService) (*UserHandler, error) {
	if users == nil {
		return nil, errors.ErrInternalServer
	}
	return &UserHandler{users: users}, nil
}

// POST /api/v1/workspaces/:tenantId/users
func (h *UserHandler) Create(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body createUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.users.Create(requestContext(c), ident.TenantID, services.CreateUserInput{
		Email:    body.Email,
		Name:     body.Name,
		Password: body.Password,
		RoleIDs:  body.RoleIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, user)
}

// POST /api/v1/workspaces/:tenantId/users/invite
//
// Invitation records membership by email before the invitee has a user row in
// this workspace, which is what workspace switching checks against.
func (h *UserHandler) Invite(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body inviteUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	membership, err := h.users.Invite(requestContext(c), ident.TenantID, body.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, membership)
}

// GET /api/v1/workspaces/:tenantId/users
func (h *UserHandler) List(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	users, err := h.users.List(requestContext(c), ident.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, users)
}

// GET /api/v1/workspaces/:tenantId/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	user, err := h.users.GetByID(requestContext(c), ident.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// PUT /api/v1/workspaces/:tenantId/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body updateUserRequest
	if !bindAndValidate(c, &body) {
		return
	}

	user, err := h.users.Update(requestContext(c), ident.TenantID, c.Param("id"), services.UpdateUserInput{
		Name:     body.Name,
		Password: body.Password,
		IsActive: body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// DELETE /api/v1/workspaces/:tenantId/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	if err := h.users.Delete(requestContext(c), ident.TenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/v1/workspaces/:tenantId/users/:id/roles
func (h *UserHandler) AssignRole(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body roleGrantRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.users.AssignRole(requestContext(c), ident.TenantID, c.Param("id"), body.RoleID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assigned": true})
}

// DELETE /api/v1/workspaces/:tenantId/users/:id/roles/:roleId
func (h *UserHandler) RemoveRole(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	if err := h.users.RemoveRole(requestContext(c), ident.TenantID, c.Param("id"), c.Param("roleId")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
