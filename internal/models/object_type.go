package models

// ObjectType categorises tracked objects within a tenant.
type ObjectType struct {
	BaseModel

	TenantID string  `gorm:"type:uuid;not null;uniqueIndex:idx_object_types_tenant_name" json:"tenant_id"`
	Tenant   *Tenant `json:"-"`

	Name        string  `gorm:"not null;uniqueIndex:idx_object_types_tenant_name" json:"name"`
	Description string  `json:"description"`
	IconID      *string `gorm:"type:uuid" json:"icon_id"`
}
