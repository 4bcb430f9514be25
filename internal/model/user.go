package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents an account inside a single company with exactly one role.
// Permission and menu checks always filter on IsActive, so a deactivated user
// fails every check without any grant being touched.
type User struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName          string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName           string    `gorm:"type:varchar(100);not null" json:"last_name"`
	PasswordHash       string    `gorm:"type:varchar(255);not null" json:"-"`
	MustChangePassword bool      `gorm:"default:false" json:"must_change_password"`
	IsActive           bool      `gorm:"default:true;index" json:"is_active"`

	RoleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"role_id"`
	Role      *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FullName joins first and last name for display purposes.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
