package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/services"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/response"
)

// TenantHandler exposes workspace lifecycle endpoints. Creating a tenant also
// provisions its six system roles, so a fresh workspace is usable immediately.
type TenantHandler struct {
	tenants *services.TenantService
}

type createTenantRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type updateTenantRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=120"`
}

func NewTenantHandler(tenants *services.TenantService) (*TenantHandler, error) {
	if tenants == nil {
		return nil, errors.ErrInternalServer
	}
	return &TenantHandler{tenants: tenants}, nil
}

// POST /api/v1/tenants
func (h *TenantHandler) Create(c *gin.Context) {
	var body createTenantRequest
	if !bindAndValidate(c, &body) {
		return
	}

	tenant, err := h.tenants.Create(requestContext(c), services.CreateTenantInput{Name: body.Name})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, tenant)
}

// GET /api/v1/tenants
func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.tenants.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tenants)
}

// GET /api/v1/tenants/:id
func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := h.tenants.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tenant)
}

// PUT /api/v1/tenants/:id
func (h *TenantHandler) Update(c *gin.Context) {
	var body updateTenantRequest
	if !bindAndValidate(c, &body) {
		return
	}

	tenant, err := h.tenants.Update(requestContext(c), c.Param("id"), services.UpdateTenantInput{Name: body.Name})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tenant)
}

// DELETE /api/v1/tenants/:id
func (h *TenantHandler) Delete(c *gin.Context) {
	if err := h.tenants.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
