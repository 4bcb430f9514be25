package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateTask       = "CREATE_TASK"
	ActionUpdateTask       = "UPDATE_TASK"
	ActionDeleteTask       = "DELETE_TASK"
	ActionChangeTaskStatus = "CHANGE_TASK_STATUS"
	ActionApproveTask      = "APPROVE_TASK"
	ActionRejectTask       = "REJECT_TASK"
	ActionAssignTaskTeam   = "ASSIGN_TASK_TEAM"

	ActionCreateCompany     = "CREATE_COMPANY"
	ActionReplaceRoleGrants = "REPLACE_ROLE_GRANTS"
	ActionReplaceMenuGrants = "REPLACE_ROLE_MENU_GRANTS"
	ActionSuperAdminSignup  = "SUPERADMIN_SIGNUP"
)

// AuditLog tracks who did what and when for state-changing operations.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for system actions
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CompanyID  *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
