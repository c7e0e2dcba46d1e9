package models

// Role is a tenant-scoped named bundle of permissions. The six roles created
// at tenant provisioning carry IsSystem and cannot be deleted or rewritten.
type Role struct {
	BaseModel

	TenantID string  `gorm:"type:uuid;not null;uniqueIndex:idx_roles_tenant_name" json:"tenant_id"`
	Tenant   *Tenant `json:"-"`

	Name        string `gorm:"not null;uniqueIndex:idx_roles_tenant_name" json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"`

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:user_roles;" json:"users,omitempty"`
	Groups      []Group      `gorm:"many2many:group_roles;" json:"groups,omitempty"`
}
