package permissions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/krisapplegate/kiro-simple-tracker-sub000/internal/models"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/logger"
	"github.com/krisapplegate/kiro-simple-tracker-sub000/pkg/metrics"
)

// DefaultCacheTTL bounds how stale a cached permission set may be.
const DefaultCacheTTL = 30 * time.Second

// DefaultCacheSize caps the number of (user, tenant) entries held in memory.
const DefaultCacheSize = 4096

// StoreConfig tunes the optional permission cache.
type StoreConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	CacheSize    int
}

type cacheKey struct {
	userID   string
	tenantID string
}

// Store is the single source of truth for authorization decisions. Every
// public lookup is fail-closed: storage errors collapse to the empty set or
// false and are logged, never surfaced into the request path.
type Store struct {
	db    *gorm.DB
	log   *zap.Logger
	cache *expirable.LRU[cacheKey, []string]
}

// NewStore constructs a permission store backed by the provided database.
func NewStore(db *gorm.DB, cfg StoreConfig) (*Store, error) {
	if db == nil {
		return nil, errors.New("permission store: db is required")
	}

	s := &Store{
		db:  db,
		log: logger.WithModule("permissions"),
	}

	if cfg.CacheEnabled {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		size := cfg.CacheSize
		if size <= 0 {
			size = DefaultCacheSize
		}
		s.cache = expirable.NewLRU[cacheKey, []string](size, nil, ttl)
	}

	return s, nil
}

// GetUserPermissions returns the deduplicated permission names effective for
// the (user, tenant) pair: the union of direct-role grants and group-inherited
// grants, restricted to roles owned by that tenant. On any storage failure it
// returns the empty set.
func (s *Store) GetUserPermissions(ctx context.Context, userID, tenantID string) []string {
	perms, err := s.lookupPermissions(ctx, userID, tenantID)
	if err != nil {
		s.denied("get user permissions", userID, tenantID, err)
		return []string{}
	}
	return perms
}

// HasPermission reports whether the user holds the named permission in the
// tenant. Unknown names, missing users, and lookup failures are all false.
func (s *Store) HasPermission(ctx context.Context, userID, tenantID, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || !IsKnown(name) {
		return false
	}

	perms, err := s.lookupPermissions(ctx, userID, tenantID)
	if err != nil {
		s.denied("has permission", userID, tenantID, err)
		return false
	}

	for _, p := range perms {
		if p == name {
			return true
		}
	}
	return false
}

// GetUserRoles returns direct and group-inherited roles, deduplicated by role
// id. On any storage failure it returns the empty slice.
func (s *Store) GetUserRoles(ctx context.Context, userID, tenantID string) []models.Role {
	roles, err := s.lookupRoles(ctx, userID, tenantID)
	if err != nil {
		s.denied("get user roles", userID, tenantID, err)
		return []models.Role{}
	}
	return roles
}

// CanAccessObject decides ownership-based access to a tracked object:
// objects.manage allows everything; objects.<action> allows reads outright and
// update/delete only for the object's creator. A missing object is
// indistinguishable from a denial so callers cannot probe for existence.
func (s *Store) CanAccessObject(ctx context.Context, userID, tenantID, objectID, action string) bool {
	switch action {
	case ActionRead, ActionUpdate, ActionDelete:
	default:
		return false
	}

	if s.HasPermission(ctx, userID, tenantID, Name(ResourceObjects, ActionManage)) {
		return true
	}

	if !s.HasPermission(ctx, userID, tenantID, Name(ResourceObjects, action)) {
		return false
	}

	if action == ActionRead {
		return true
	}

	var owners []string
	err := s.db.WithContext(ctx).
		Model(&models.TrackedObject{}).
		Where("id = ? AND tenant_id = ?", objectID, tenantID).
		Limit(1).
		Pluck("created_by", &owners).Error
	if err != nil {
		s.denied("load object owner", userID, tenantID, err)
		return false
	}

	return len(owners) == 1 && owners[0] == userID
}

// InvalidateUser evicts the cached permission set for one (user, tenant) pair.
// Role and group mutations must call this before returning.
func (s *Store) InvalidateUser(userID, tenantID string) {
	if s.cache == nil {
		return
	}
	s.cache.Remove(cacheKey{userID: userID, tenantID: tenantID})
}

// InvalidateTenant purges the cache after a mutation whose blast radius is not
// limited to a single user, such as changing a role's permission set.
func (s *Store) InvalidateTenant(tenantID string) {
	if s.cache == nil {
		return
	}
	// The LRU is not indexed by tenant; a full purge keeps invalidation exact.
	s.cache.Purge()
}

// lookupPermissions is the single fallible resolution path. Public accessors
// wrap it with the map-error-to-deny adapter so every call site inherits
// fail-closed behaviour.
func (s *Store) lookupPermissions(ctx context.Context, userID, tenantID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	tenantID = strings.TrimSpace(tenantID)
	if userID == "" || tenantID == "" {
		return []string{}, nil
	}

	key := cacheKey{userID: userID, tenantID: tenantID}
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
	}

	var direct []string
	err := s.db.WithContext(ctx).
		Model(&models.Permission{}).
		Distinct("permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.tenant_id = ?", userID, tenantID).
		Pluck("permissions.name", &direct).Error
	if err != nil {
		return nil, fmt.Errorf("permission store: direct permissions: %w", err)
	}

	var inherited []string
	err = s.db.WithContext(ctx).
		Model(&models.Permission{}).
		Distinct("permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN group_roles ON group_roles.role_id = roles.id").
		Joins("JOIN user_groups ON user_groups.group_id = group_roles.group_id").
		Where("user_groups.user_id = ? AND roles.tenant_id = ?", userID, tenantID).
		Pluck("permissions.name", &inherited).Error
	if err != nil {
		return nil, fmt.Errorf("permission store: group permissions: %w", err)
	}

	set := make(map[string]struct{}, len(direct)+len(inherited))
	for _, name := range direct {
		set[name] = struct{}{}
	}
	for _, name := range inherited {
		set[name] = struct{}{}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	if s.cache != nil {
		s.cache.Add(key, names)
	}

	return names, nil
}

func (s *Store) lookupRoles(ctx context.Context, userID, tenantID string) ([]models.Role, error) {
	userID = strings.TrimSpace(userID)
	tenantID = strings.TrimSpace(tenantID)
	if userID == "" || tenantID == "" {
		return []models.Role{}, nil
	}

	var direct []models.Role
	err := s.db.WithContext(ctx).
		Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ? AND roles.tenant_id = ?", userID, tenantID).
		Find(&direct).Error
	if err != nil {
		return nil, fmt.Errorf("permission store: direct roles: %w", err)
	}

	var inherited []models.Role
	err = s.db.WithContext(ctx).
		Model(&models.Role{}).
		Joins("JOIN group_roles ON group_roles.role_id = roles.id").
		Joins("JOIN user_groups ON user_groups.group_id = group_roles.group_id").
		Where("user_groups.user_id = ? AND roles.tenant_id = ?", userID, tenantID).
		Find(&inherited).Error
	if err != nil {
		return nil, fmt.Errorf("permission store: group roles: %w", err)
	}

	seen := make(map[string]struct{}, len(direct)+len(inherited))
	roles := make([]models.Role, 0, len(direct)+len(inherited))
	for _, role := range append(direct, inherited...) {
		if _, ok := seen[role.ID]; ok {
			continue
		}
		seen[role.ID] = struct{}{}
		roles = append(roles, role)
	}

	return roles, nil
}

// denied is the map-error-to-deny adapter: one log entry and one counter per
// collapsed failure, nothing thrown into the request path.
func (s *Store) denied(op, userID, tenantID string, err error) {
	metrics.StorageFailures.Inc()
	s.log.Error("storage failure treated as deny",
		zap.String("op", op),
		zap.String("user_id", userID),
		zap.String("tenant_id", tenantID),
		zap.Error(err),
	)
}
