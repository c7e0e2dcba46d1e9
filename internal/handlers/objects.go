package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/services"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/response"
)

// ObjectHandler serves tracked objects plus the type and icon lookups the
// tracker UI needs to render them.
type ObjectHandler struct {
	objects *services.ObjectService
}

type createObjectRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	ObjectTypeID *string `json:"object_type_id" validate:"omitempty,uuid4"`
	IconID       *string `json:"icon_id" validate:"omitempty,uuid4"`
	Latitude     float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude    float64 `json:"longitude" validate:"min=-180,max=180"`
}

type updateObjectRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=200"`
	IconID    *string  `json:"icon_id" validate:"omitempty,uuid4"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

func NewObjectHandler(objects *services.ObjectService) (*ObjectHandler, error) {
	if objects == nil {
		return nil, errors.ErrInternalServer
	}
	return &ObjectHandler{objects: objects}, nil
}

// POST /api/v1/workspaces/:tenantId/objects
func (h *ObjectHandler) Create(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body createObjectRequest
	if !bindAndValidate(c, &body) {
		return
	}

	object, err := h.objects.Create(requestContext(c), ident.TenantID, ident.UserID, services.CreateObjectInput{
		Name:         body.Name,
		ObjectTypeID: body.ObjectTypeID,
		IconID:       body.IconID,
		Latitude:     body.Latitude,
		Longitude:    body.Longitude,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, object)
}

// GET /api/v1/workspaces/:tenantId/objects
func (h *ObjectHandler) List(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	objects, err := h.objects.List(requestContext(c), ident.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, objects)
}

// GET /api/v1/workspaces/:tenantId/objects/:id
func (h *ObjectHandler) Get(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	object, err := h.objects.GetByID(requestContext(c), ident.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, object)
}

// PUT /api/v1/workspaces/:tenantId/objects/:id
func (h *ObjectHandler) Update(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	var body updateObjectRequest
	if !bindAndValidate(c, &body) {
		return
	}

	object, err := h.objects.Update(requestContext(c), ident.TenantID, c.Param("id"), services.UpdateObjectInput{
		Name:      body.Name,
		IconID:    body.IconID,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, object)
}

// DELETE /api/v1/workspaces/:tenantId/objects/:id
func (h *ObjectHandler) Delete(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	if err := h.objects.Delete(requestContext(c), ident.TenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/v1/workspaces/:tenantId/types
func (h *ObjectHandler) ListTypes(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	types, err := h.objects.ListTypes(requestContext(c), ident.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, types)
}

// GET /api/v1/workspaces/:tenantId/icons
func (h *ObjectHandler) ListIcons(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		response.Error(c, errors.ErrAuthMissing)
		return
	}

	icons, err := h.objects.ListIcons(requestContext(c), ident.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, icons)
}
