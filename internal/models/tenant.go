package models

import "gorm.io/datatypes"

// Tenant is an isolated workspace. Every entity except the global permission
// catalog is partitioned by tenant.
type Tenant struct {
	BaseModel

	Name     string         `gorm:"uniqueIndex;not null" json:"name"`
	Settings datatypes.JSON `json:"settings"`

	Users  []User  `gorm:"foreignKey:TenantID" json:"users,omitempty"`
	Roles  []Role  `gorm:"foreignKey:TenantID" json:"roles,omitempty"`
	Groups []Group `gorm:"foreignKey:TenantID" json:"groups,omitempty"`
}
