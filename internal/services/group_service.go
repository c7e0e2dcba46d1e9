package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/permissions"
	apperrors "github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
)

// ErrGroupNotFound indicates the requested group does not exist in the tenant.
var ErrGroupNotFound = apperrors.New("GROUP_NOT_FOUND", "Group not found", http.StatusNotFound)

// CreateGroupInput captures new group metadata.
type CreateGroupInput struct {
	Name        string
	Description string
}

// UpdateGroupInput describes mutable group fields.
type UpdateGroupInput struct {
	Name        *string
	Description *string
}

// GroupService handles group lifecycle, membership, and bulk role grants.
type GroupService struct {
	db    *gorm.DB
	store *permissions.Store
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(db *gorm.DB, store *permissions.Store) (*GroupService, error) {
	if db == nil {
		return nil, errors.New("group service: db is required")
	}
	return &GroupService{db: db, store: store}, nil
}

// Create registers a new group.
func (s *GroupService) Create(ctx context.Context, tenantID string, input CreateGroupInput) (*models.Group, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("group name is required")
	}

	group := &models.Group{
		TenantID:    tenantID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}

	if err := s.db.WithContext(ctx).Create(group).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("group name already exists in this workspace")
		}
		return nil, fmt.Errorf("group service: create group: %w", err)
	}

	return group, nil
}

// GetByID loads a group with members and roles, scoped to the tenant.
func (s *GroupService) GetByID(ctx context.Context, tenantID, groupID string) (*models.Group, error) {
	ctx = ensureContext(ctx)

	var group models.Group
	err := s.db.WithContext(ctx).
		Preload("Users").
		Preload("Roles").
		First(&group, "id = ? AND tenant_id = ?", groupID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("group service: load group: %w", err)
	}
	return &group, nil
}

// List returns the tenant's groups ordered by creation date.
func (s *GroupService) List(ctx context.Context, tenantID string) ([]models.Group, error) {
	ctx = ensureContext(ctx)

	var groups []models.Group
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("group service: list groups: %w", err)
	}
	return groups, nil
}

// Update modifies group metadata.
func (s *GroupService) Update(ctx context.Context, tenantID, groupID string, input UpdateGroupInput) (*models.Group, error) {
	ctx = ensureContext(ctx)

	group, err := s.GetByID(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != group.Name {
			updates["name"] = name
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}

	if len(updates) == 0 {
		return group, nil
	}

	if err := s.db.WithContext(ctx).Model(group).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("group name already exists in this workspace")
		}
		return nil, fmt.Errorf("group service: update group: %w", err)
	}

	return s.GetByID(ctx, tenantID, groupID)
}

// Delete removes a group, its memberships, and its role grants.
func (s *GroupService) Delete(ctx context.Context, tenantID, groupID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, tenantID, groupID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.UserGroup{}).Error; err != nil {
			return fmt.Errorf("clear memberships: %w", err)
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupRole{}).Error; err != nil {
			return fmt.Errorf("clear role grants: %w", err)
		}
		if err := tx.Delete(&models.Group{}, "id = ?", groupID).Error; err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("group service: delete group: %w", err)
	}

	if s.store != nil {
		s.store.InvalidateTenant(tenantID)
	}
	return nil
}

// AddMember attaches a user to a group. Duplicate additions are no-ops.
func (s *GroupService) AddMember(ctx context.Context, tenantID, groupID, userID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, tenantID, groupID); err != nil {
		return err
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ? AND tenant_id = ?", userID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("group service: load user: %w", err)
	}

	membership := models.UserGroup{UserID: userID, GroupID: groupID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error; err != nil {
		return fmt.Errorf("group service: add member: %w", err)
	}

	if s.store != nil {
		s.store.InvalidateUser(userID, tenantID)
	}
	return nil
}

// RemoveMember detaches a user from a group. Removing an absent membership is a no-op.
func (s *GroupService) RemoveMember(ctx context.Context, tenantID, groupID, userID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, tenantID, groupID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.UserGroup{}).Error
	if err != nil {
		return fmt.Errorf("group service: remove member: %w", err)
	}

	if s.store != nil {
		s.store.InvalidateUser(userID, tenantID)
	}
	return nil
}

// AssignRole grants a role to every member of the group. Duplicate grants are no-ops.
func (s *GroupService) AssignRole(ctx context.Context, tenantID, groupID, roleID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, tenantID, groupID); err != nil {
		return err
	}

	var role models.Role
	err := s.db.WithContext(ctx).First(&role, "id = ? AND tenant_id = ?", roleID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRoleNotFound
	}
	if err != nil {
		return fmt.Errorf("group service: load role: %w", err)
	}

	grant := models.GroupRole{GroupID: groupID, RoleID: roleID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error; err != nil {
		return fmt.Errorf("group service: assign role: %w", err)
	}

	if s.store != nil {
		s.store.InvalidateTenant(tenantID)
	}
	return nil
}

// RemoveRole revokes a group-wide role grant.
func (s *GroupService) RemoveRole(ctx context.Context, tenantID, groupID, roleID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, tenantID, groupID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Where("group_id = ? AND role_id = ?", groupID, roleID).
		Delete(&models.GroupRole{}).Error
	if err != nil {
		return fmt.Errorf("group service: remove role: %w", err)
	}

	if s.store != nil {
		s.store.InvalidateTenant(tenantID)
	}
	return nil
}
