package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is a named bundle of permission and menu grants assigned to users.
type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	IsSystem  bool      `gorm:"default:false" json:"is_system"` // Prevent deletion of built-in roles
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Permissions     []RolePermission     `gorm:"foreignKey:RoleID" json:"permissions,omitempty"`
	MenuPermissions []RoleMenuPermission `gorm:"foreignKey:RoleID" json:"menu_permissions,omitempty"`
}

// Permission is a stable keyed capability, e.g. "USERS_VIEW" or "TEAMS_EDIT".
// Only active permissions are honored by the evaluator.
type Permission struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	KeyName  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"key_name"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive bool      `gorm:"default:true" json:"is_active"`
}

// RolePermission grants (or explicitly denies) one permission to one role.
// Absence of a row means "not allowed".
type RolePermission struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoleID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_role_permission" json:"role_id"`
	PermissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_role_permission" json:"permission_id"`
	IsAllowed    bool      `gorm:"default:false" json:"is_allowed"`

	Permission *Permission `gorm:"foreignKey:PermissionID" json:"permission,omitempty"`
}
