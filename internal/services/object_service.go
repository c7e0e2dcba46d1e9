package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	apperrors "github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
)

// ErrObjectNotFound indicates the requested tracked object does not exist.
var ErrObjectNotFound = apperrors.New("OBJECT_NOT_FOUND", "Object not found", http.StatusNotFound)

// CreateObjectInput captures a new tracked object.
type CreateObjectInput struct {
	Name         string
	ObjectTypeID *string
	IconID       *string
	Latitude     float64
	Longitude    float64
}

// UpdateObjectInput describes mutable tracked object fields.
type UpdateObjectInput struct {
	Name      *string
	Latitude  *float64
	Longitude *float64
	IconID    *string
}

// ObjectService manages the tracked objects the engine authorizes access to.
// Only the ownership field matters for authorization; everything else is the
// minimal surface the HTTP layer needs.
type ObjectService struct {
	db *gorm.DB
}

// NewObjectService constructs an ObjectService instance.
func NewObjectService(db *gorm.DB) (*ObjectService, error) {
	if db == nil {
		return nil, errors.New("object service: db is required")
	}
	return &ObjectService{db: db}, nil
}

// Create registers a tracked object stamped with its creator.
func (s *ObjectService) Create(ctx context.Context, tenantID, createdBy string, input CreateObjectInput) (*models.TrackedObject, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("object name is required")
	}

	object := &models.TrackedObject{
		TenantID:     tenantID,
		Name:         name,
		ObjectTypeID: input.ObjectTypeID,
		IconID:       input.IconID,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		CreatedBy:    createdBy,
	}

	if err := s.db.WithContext(ctx).Create(object).Error; err != nil {
		return nil, fmt.Errorf("object service: create object: %w", err)
	}

	return object, nil
}

// GetByID loads a tracked object scoped to the tenant.
func (s *ObjectService) GetByID(ctx context.Context, tenantID, objectID string) (*models.TrackedObject, error) {
	ctx = ensureContext(ctx)

	var object models.TrackedObject
	err := s.db.WithContext(ctx).First(&object, "id = ? AND tenant_id = ?", objectID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("object service: load object: %w", err)
	}
	return &object, nil
}

// List returns the tenant's tracked objects.
func (s *ObjectService) List(ctx context.Context, tenantID string) ([]models.TrackedObject, error) {
	ctx = ensureContext(ctx)

	var objects []models.TrackedObject
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&objects).Error
	if err != nil {
		return nil, fmt.Errorf("object service: list objects: %w", err)
	}
	return objects, nil
}

// Update modifies a tracked object. Access control happens in the gate; the
// service only touches rows in the caller's tenant.
func (s *ObjectService) Update(ctx context.Context, tenantID, objectID string, input UpdateObjectInput) (*models.TrackedObject, error) {
	ctx = ensureContext(ctx)

	object, err := s.GetByID(ctx, tenantID, objectID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			updates["name"] = name
		}
	}
	if input.Latitude != nil {
		updates["latitude"] = *input.Latitude
	}
	if input.Longitude != nil {
		updates["longitude"] = *input.Longitude
	}
	if input.IconID != nil {
		updates["icon_id"] = *input.IconID
	}

	if len(updates) == 0 {
		return object, nil
	}

	if err := s.db.WithContext(ctx).Model(object).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("object service: update object: %w", err)
	}

	return s.GetByID(ctx, tenantID, objectID)
}

// Delete removes a tracked object.
func (s *ObjectService) Delete(ctx context.Context, tenantID, objectID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, tenantID, objectID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.TrackedObject{}, "id = ?", objectID).Error; err != nil {
		return fmt.Errorf("object service: delete object: %w", err)
	}
	return nil
}

// ListTypes returns the tenant's object types.
func (s *ObjectService) ListTypes(ctx context.Context, tenantID string) ([]models.ObjectType, error) {
	ctx = ensureContext(ctx)

	var types []models.ObjectType
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&types).Error
	if err != nil {
		return nil, fmt.Errorf("object service: list types: %w", err)
	}
	return types, nil
}

// ListIcons returns the tenant's icons.
func (s *ObjectService) ListIcons(ctx context.Context, tenantID string) ([]models.Icon, error) {
	ctx = ensureContext(ctx)

	var icons []models.Icon
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&icons).Error
	if err != nil {
		return nil, fmt.Errorf("object service: list icons: %w", err)
	}
	return icons, nil
}
