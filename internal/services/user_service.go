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
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/crypto"
	apperrors "github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist in the tenant.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrEmailTaken signals the email already has an identity in the tenant.
	ErrEmailTaken = apperrors.New("EMAIL_TAKEN", "Email already registered in this workspace", http.StatusConflict)
)

// CreateUserInput captures the details required for a new per-tenant identity.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	RoleIDs  []string
}

// UpdateUserInput describes mutable user fields.
type UpdateUserInput struct {
	Name     *string
	Password *string
	IsActive *bool
}

// UserService manages tenant-scoped identities and their role grants.
type UserService struct {
	db    *gorm.DB
	store *permissions.Store
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, store *permissions.Store) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, store: store}, nil
}

// Create registers a per-tenant identity along with its membership row.
func (s *UserService) Create(ctx context.Context, tenantID string, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		TenantID: tenantID,
		Email:    email,
		Name:     strings.TrimSpace(input.Name),
		Password: hashed,
		IsActive: true,
	}

	roleIDs := normaliseIDs(input.RoleIDs)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("user service: create user: %w", err)
		}

		membership := models.Membership{TenantID: tenantID, Email: email}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error; err != nil {
			return fmt.Errorf("user service: create membership: %w", err)
		}

		if len(roleIDs) > 0 {
			var count int64
			if err := tx.Model(&models.Role{}).
				Where("id IN ? AND tenant_id = ?", roleIDs, tenantID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("user service: verify roles: %w", err)
			}
			if int(count) != len(roleIDs) {
				return apperrors.NewBadRequest("one or more roles were not found in this workspace")
			}

			grants := make([]models.UserRole, 0, len(roleIDs))
			for _, roleID := range roleIDs {
				grants = append(grants, models.UserRole{UserID: user.ID, RoleID: roleID})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grants).Error; err != nil {
				return fmt.Errorf("user service: grant roles: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Invite records tenant membership for an email before any per-tenant
// identity exists. Inviting the same email twice is a no-op.
func (s *UserService) Invite(ctx context.Context, tenantID, email string) (*models.Membership, error) {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}

	membership := &models.Membership{TenantID: tenantID, Email: email}
	err := s.db.WithContext(ctx).
		Where(models.Membership{TenantID: tenantID, Email: email}).
		FirstOrCreate(membership).Error
	if err != nil {
		return nil, fmt.Errorf("user service: invite member: %w", err)
	}

	return membership, nil
}

// GetByID loads a user scoped to the tenant.
func (s *UserService) GetByID(ctx context.Context, tenantID, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Preload("Groups").
		First(&user, "id = ? AND tenant_id = ?", userID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// GetByEmail loads the per-tenant identity for an email, if one exists.
func (s *UserService) GetByEmail(ctx context.Context, tenantID, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		First(&user, "tenant_id = ? AND email = ?", tenantID, normaliseEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user by email: %w", err)
	}
	return &user, nil
}

// List returns the tenant's users ordered by creation date.
func (s *UserService) List(ctx context.Context, tenantID string) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var users []models.User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return users, nil
}

// Update modifies mutable user fields.
func (s *UserService) Update(ctx context.Context, tenantID, userID string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Password != nil && strings.TrimSpace(*input.Password) != "" {
		hashed, err := crypto.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("user service: hash password: %w", err)
		}
		updates["password"] = hashed
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	return s.GetByID(ctx, tenantID, userID)
}

// Delete removes a user and every grant referencing it. The membership row
// survives only if another tenant still claims the email, which it cannot
// here, so it is removed too.
func (s *UserService) Delete(ctx context.Context, tenantID, userID string) error {
	ctx = ensureContext(ctx)

	user, err := s.GetByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return fmt.Errorf("clear role grants: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserGroup{}).Error; err != nil {
			return fmt.Errorf("clear group memberships: %w", err)
		}
		if err := tx.Where("tenant_id = ? AND email = ?", tenantID, user.Email).
			Delete(&models.Membership{}).Error; err != nil {
			return fmt.Errorf("clear membership: %w", err)
		}
		if err := tx.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("user service: delete user: %w", err)
	}

	if s.store != nil {
		s.store.InvalidateUser(userID, tenantID)
	}
	return nil
}

// AssignRole grants a role directly to a user. Duplicate grants are no-ops.
func (s *UserService) AssignRole(ctx context.Context, tenantID, userID, roleID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, tenantID, userID); err != nil {
		return err
	}

	var role models.Role
	err := s.db.WithContext(ctx).First(&role, "id = ? AND tenant_id = ?", roleID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRoleNotFound
	}
	if err != nil {
		return fmt.Errorf("user service: load role: %w", err)
	}

	grant := models.UserRole{UserID: userID, RoleID: roleID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error; err != nil {
		return fmt.Errorf("user service: assign role: %w", err)
	}

	if s.store != nil {
		s.store.InvalidateUser(userID, tenantID)
	}
	return nil
}

// RemoveRole revokes a direct role grant. Removing an absent grant is a no-op.
func (s *UserService) RemoveRole(ctx context.Context, tenantID, userID, roleID string) error {
	ctx = ensureContext(ctx)

	if _, err := s.GetByID(ctx, tenantID, userID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{}).Error
	if err != nil {
		return fmt.Errorf("user service: remove role: %w", err)
	}

	if s.store != nil {
		s.store.InvalidateUser(userID, tenantID)
	}
	return nil
}
