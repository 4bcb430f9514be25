package model

import (
	"github.com/google/uuid"
)

// Menu is a navigation node. Menus form a tree through ParentMenuID; visibility
// is granted per role through RoleMenuPermission rows.
type Menu struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UniqueKey string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"unique_key"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Route     string    `gorm:"type:varchar(255)" json:"route"`
	Icon      string    `gorm:"type:varchar(100)" json:"icon"`

	ParentMenuID *uuid.UUID `gorm:"type:uuid;index" json:"parent_menu_id"`
	ParentMenu   *Menu      `gorm:"foreignKey:ParentMenuID" json:"-"`

	SortOrder int  `gorm:"default:0" json:"sort_order"`
	IsActive  bool `gorm:"default:true" json:"is_active"`
}

// RoleMenuPermission carries the per-menu capability flags of one role,
// independent of the keyed RolePermission grants.
type RoleMenuPermission struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_role_menu" json:"role_id"`
	MenuID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_role_menu" json:"menu_id"`

	CanView    bool `gorm:"default:false" json:"can_view"`
	CanCreate  bool `gorm:"default:false" json:"can_create"`
	CanEdit    bool `gorm:"default:false" json:"can_edit"`
	CanDelete  bool `gorm:"default:false" json:"can_delete"`
	CanApprove bool `gorm:"default:false" json:"can_approve"`
	CanReject  bool `gorm:"default:false" json:"can_reject"`

	Menu *Menu `gorm:"foreignKey:MenuID" json:"menu,omitempty"`
}
