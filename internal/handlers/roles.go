package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/services"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/response"
)

// RoleHandler manages custom roles and their permission sets. System roles are
// listed alongside custom ones but reject mutation.
type RoleHandler struct {
	roles *services.RoleService
}

type createRoleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	DisplayName string `json:"display_name" validate:"omitempty,max=120"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type updateRoleRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type setPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}

func NewRoleHandler(roles *services.RoleService) (*RoleHandler, error) {
	if roles == nil {
		return nil, errors.ErrInternalServer
	}
	return &RoleHandler{roles: roles}, nil
}

// POST /api/v1/workspaces/:tenantId/roles
func (h *RoleHandler) Create(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body createRoleRequest
	if !bindAndValidate(c, &body) {
		return
	}

	role, err := h.roles.Create(requestContext(c), ident.TenantID, services.CreateRoleInput{
		Name:        body.Name,
		DisplayName: body.DisplayName,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, role)
}

// GET /api/v1/workspaces/:tenantId/roles
func (h *RoleHandler) List(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	roles, err := h.roles.List(requestContext(c), ident.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, roles)
}

// GET /api/v1/workspaces/:tenantId/roles/:id
func (h *RoleHandler) Get(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	role, err := h.roles.GetByID(requestContext(c), ident.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, role)
}

// PUT /api/v1/workspaces/:tenantId/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body updateRoleRequest
	if !bindAndValidate(c, &body) {
		return
	}

	role, err := h.roles.Update(requestContext(c), ident.TenantID, c.Param("id"), services.UpdateRoleInput{
		DisplayName: body.DisplayName,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, role)
}

// DELETE /api/v1/workspaces/:tenantId/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	if err := h.roles.Delete(requestContext(c), ident.TenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// PUT /api/v1/workspaces/:tenantId/roles/:id/permissions
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body setPermissionsRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.roles.SetPermissions(requestContext(c), ident.TenantID, c.Param("id"), body.Permissions); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// GET /api/v1/workspaces/:tenantId/permissions
func (h *RoleHandler) ListCatalog(c *gin.Context) {
	catalog, err := h.roles.ListCatalog(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, catalog)
}
