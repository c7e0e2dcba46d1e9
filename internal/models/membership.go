package models

// Membership records that an email address belongs to a tenant. It exists
// independently of the per-tenant User row so an invited member can be
// recognised during workspace switching before their identity materialises.
type Membership struct {
	BaseModel

	TenantID string  `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_tenant_email" json:"tenant_id"`
	Tenant   *Tenant `json:"-"`

	Email string `gorm:"not null;uniqueIndex:idx_memberships_tenant_email;index" json:"email"`
}
