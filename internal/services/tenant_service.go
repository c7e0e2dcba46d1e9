package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
	apperrors "github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/logger"
)

// ErrTenantNotFound indicates the requested tenant does not exist.
var ErrTenantNotFound = apperrors.New("TENANT_NOT_FOUND", "Tenant not found", http.StatusNotFound)

// CreateTenantInput captures new tenant metadata.
type CreateTenantInput struct {
	Name string
}

// UpdateTenantInput describes mutable tenant fields.
type UpdateTenantInput struct {
	Name *string
}

// TenantService handles workspace lifecycle, including RBAC provisioning.
type TenantService struct {
	db    *gorm.DB
	store *permissions.Store
	log   *zap.Logger
}

// NewTenantService constructs a TenantService instance.
func NewTenantService(db *gorm.DB, store *permissions.Store) (*TenantService, error) {
	if db == nil {
		return nil, errors.New("tenant service: db is required")
	}
	return &TenantService{
		db:    db,
		store: store,
		log:   logger.WithModule("tenants"),
	}, nil
}

// Create registers a new tenant and provisions its six system roles in the
// same transaction, so no tenant ever exists half-provisioned.
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("tenant name is required")
	}

	tenant := &models.Tenant{Name: name}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			if isUniqueConstraintError(err) {
				return apperrors.NewBadRequest("tenant name already exists")
			}
			return fmt.Errorf("tenant service: create tenant: %w", err)
		}

		if _, err := permissions.InitializeTenantRBAC(ctx, tx, tenant.ID); err != nil {
			return fmt.Errorf("tenant service: provision rbac: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tenant provisioned", zap.String("tenant_id", tenant.ID), zap.String("name", tenant.Name))
	return tenant, nil
}

// GetByID loads a tenant by identifier.
func (s *TenantService) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	var tenant models.Tenant
	err := s.db.WithContext(ctx).First(&tenant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("tenant service: load tenant: %w", err)
	}
	return &tenant, nil
}

// List returns all tenants ordered by creation date.
func (s *TenantService) List(ctx context.Context) ([]models.Tenant, error) {
	ctx = ensureContext(ctx)

	var tenants []models.Tenant
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("tenant service: list tenants: %w", err)
	}
	return tenants, nil
}

// Update modifies tenant metadata.
func (s *TenantService) Update(ctx context.Context, id string, input UpdateTenantInput) (*models.Tenant, error) {
	ctx = ensureContext(ctx)

	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name == nil {
		return tenant, nil
	}
	name := strings.TrimSpace(*input.Name)
	if name == "" || name == tenant.Name {
		return tenant, nil
	}

	if err := s.db.WithContext(ctx).Model(tenant).Update("name", name).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("tenant name already exists")
		}
		return nil, fmt.Errorf("tenant service: update tenant: %w", err)
	}

	tenant.Name = name
	return tenant, nil
}

// Delete removes a tenant and cascades every entity it owns.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id IN (?)", tx.Model(&models.Role{}).Select("id").Where("tenant_id = ?", id)).
			Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("clear role permissions: %w", err)
		}
		if err := tx.Where("role_id IN (?)", tx.Model(&models.Role{}).Select("id").Where("tenant_id = ?", id)).
			Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("clear user roles: %w", err)
		}
		if err := tx.Where("role_id IN (?)", tx.Model(&models.Role{}).Select("id").Where("tenant_id = ?", id)).
			Delete(&models.GroupRole{}).Error; err != nil {
			return fmt.Errorf("clear group roles: %w", err)
		}
		if err := tx.Where("group_id IN (?)", tx.Model(&models.Group{}).Select("id").Where("tenant_id = ?", id)).
			Delete(&models.UserGroup{}).Error; err != nil {
			return fmt.Errorf("clear group memberships: %w", err)
		}

		for _, model := range []any{
			&models.TrackedObject{},
			&models.ObjectType{},
			&models.Icon{},
			&models.Group{},
			&models.Role{},
			&models.User{},
			&models.Membership{},
		} {
			if err := tx.Where("tenant_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("cascade delete: %w", err)
			}
		}

		if err := tx.Delete(&models.Tenant{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete tenant: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tenant service: delete tenant: %w", err)
	}

	if s.store != nil {
		s.store.InvalidateTenant(id)
	}
	s.log.Info("tenant deleted", zap.String("tenant_id", id))
	return nil
}
