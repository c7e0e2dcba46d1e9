package models

import "time"

// User is a tenant-scoped identity. A single human may hold one User row per
// tenant, keyed by (email, tenant_id); identity is deliberately not global.
type User struct {
	BaseModel

	TenantID string  `gorm:"type:uuid;not null;uniqueIndex:idx_users_tenant_email" json:"tenant_id"`
	Tenant   *Tenant `json:"-"`

	Email    string `gorm:"not null;uniqueIndex:idx_users_tenant_email" json:"email"`
	Name     string `json:"name"`
	Password string `gorm:"not null" json:"-"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Roles  []Role  `gorm:"many2many:user_roles;" json:"roles,omitempty"`
	Groups []Group `gorm:"many2many:user_groups;" json:"groups,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at"`
}
