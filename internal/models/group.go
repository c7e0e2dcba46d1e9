package models

// Group is a tenant-scoped collection of users used to grant roles in bulk.
// Every role attached to a group is inherited by each of its members.
type Group struct {
	BaseModel

	TenantID string  `gorm:"type:uuid;not null;uniqueIndex:idx_groups_tenant_name" json:"tenant_id"`
	Tenant   *Tenant `json:"-"`

	Name        string `gorm:"not null;uniqueIndex:idx_groups_tenant_name" json:"name"`
	Description string `json:"description"`

	Users []User `gorm:"many2many:user_groups;" json:"users,omitempty"`
	Roles []Role `gorm:"many2many:group_roles;" json:"roles,omitempty"`
}
