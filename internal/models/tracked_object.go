package models

// TrackedObject is a tenant-scoped entity whose position the platform tracks.
// Only the fields the authorization engine reads matter here; CreatedBy is the
// ownership tie-breaker for update/delete access.
type TrackedObject struct {
	BaseModel

	TenantID string  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant   *Tenant `json:"-"`

	Name         string  `gorm:"not null" json:"name"`
	ObjectTypeID *string `gorm:"type:uuid" json:"object_type_id"`
	IconID       *string `gorm:"type:uuid" json:"icon_id"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	CreatedBy string `gorm:"type:uuid;not null;index" json:"created_by"`
}
