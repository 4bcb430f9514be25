package model

import (
	"time"

	"github.com/google/uuid"
)

// Team capacity window enforced at the service layer.
const (
	TeamMinMembers = 5
	TeamMaxMembers = 10
)

// Team is a company-scoped working group, optionally attached to a project.
type Team struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	MaxMembers int       `gorm:"not null" json:"max_members"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`

	CompanyID uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	ProjectID *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	Project   *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UserTeam is the membership row between users and teams.
type UserTeam struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_team" json:"user_id"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_team" json:"team_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Team *Team `gorm:"foreignKey:TeamID" json:"-"`
}
