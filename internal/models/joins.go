package models

// Explicit join models back the many2many relations declared above. Having
// them as first-class types lets services perform insert-or-ignore upserts and
// single-statement deletes against the join tables directly.

// UserRole grants a role directly to a user.
type UserRole struct {
	UserID string `gorm:"primaryKey;type:uuid" json:"user_id"`
	RoleID string `gorm:"primaryKey;type:uuid" json:"role_id"`
}

func (UserRole) TableName() string { return "user_roles" }

// UserGroup records a user's membership in a group.
type UserGroup struct {
	UserID  string `gorm:"primaryKey;type:uuid" json:"user_id"`
	GroupID string `gorm:"primaryKey;type:uuid" json:"group_id"`
}

func (UserGroup) TableName() string { return "user_groups" }

// GroupRole grants a role to every member of a group.
type GroupRole struct {
	GroupID string `gorm:"primaryKey;type:uuid" json:"group_id"`
	RoleID  string `gorm:"primaryKey;type:uuid" json:"role_id"`
}

func (GroupRole) TableName() string { return "group_roles" }

// RolePermission attaches a catalog permission to a role.
type RolePermission struct {
	RoleID       string `gorm:"primaryKey;type:uuid" json:"role_id"`
	PermissionID string `gorm:"primaryKey;type:uuid" json:"permission_id"`
}

func (RolePermission) TableName() string { return "role_permissions" }
