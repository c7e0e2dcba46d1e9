package models

// Icon is a tenant-scoped map marker. Image storage itself lives elsewhere;
// the engine only needs the row for read/manage authorization.
type Icon struct {
	BaseModel

	TenantID string  `gorm:"type:uuid;not null;uniqueIndex:idx_icons_tenant_name" json:"tenant_id"`
	Tenant   *Tenant `json:"-"`

	Name string `gorm:"not null;uniqueIndex:idx_icons_tenant_name" json:"name"`
	Path string `json:"path"`
}
