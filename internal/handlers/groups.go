package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/services"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/response"
)

// GroupHandler manages groups, their membership, and bulk role grants.
type GroupHandler struct {
	groups *services.GroupService
}

type createGroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type updateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type groupMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

func NewGroupHandler(groups *services.GroupService) (*GroupHandler, error) {
	if groups == nil {
		return nil, errors.ErrInternalServer
	}
	return &GroupHandler{groups: groups}, nil
}

// POST /api/v1/workspaces/:tenantId/groups
func (h *GroupHandler) Create(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body createGroupRequest
	if !bindAndValidate(c, &body) {
		return
	}

	group, err := h.groups.Create(requestContext(c), ident.TenantID, services.CreateGroupInput{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, group)
}

// GET /api/v1/workspaces/:tenantId/groups
func (h *GroupHandler) List(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	groups, err := h.groups.List(requestContext(c), ident.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, groups)
}

// GET /api/v1/workspaces/:tenantId/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	group, err := h.groups.GetByID(requestContext(c), ident.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, group)
}

// PUT /api/v1/workspaces/:tenantId/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body updateGroupRequest
	if !bindAndValidate(c, &body) {
		return
	}

	group, err := h.groups.Update(requestContext(c), ident.TenantID, c.Param("id"), services.UpdateGroupInput{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, group)
}

// DELETE /api/v1/workspaces/:tenantId/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	if err := h.groups.Delete(requestContext(c), ident.TenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/v1/workspaces/:tenantId/groups/:id/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body groupMemberRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.groups.AddMember(requestContext(c), ident.TenantID, c.Param("id"), body.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"added": true})
}

// DELETE /api/v1/workspaces/:tenantId/groups/:id/members/:userId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	if err := h.groups.RemoveMember(requestContext(c), ident.TenantID, c.Param("id"), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// POST /api/v1/workspaces/:tenantId/groups/:id/roles
func (h *GroupHandler) AssignRole(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body roleGrantRequest
	if !bindAndValidate(c, &body) {
		return
	}

	if err := h.groups.AssignRole(requestContext(c), ident.TenantID, c.Param("id"), body.RoleID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"assigned": true})
}

// DELETE /api/v1/workspaces/:tenantId/groups/:id/roles/:roleId
func (h *GroupHandler) RemoveRole(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	if err := h.groups.RemoveRole(requestContext(c), ident.TenantID, c.Param("id"), c.Param("roleId")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
