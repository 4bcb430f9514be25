package model

import (
	"time"

	"github.com/google/uuid"
)

// Requirement is a project-scoped specification line that tasks can link to.
type Requirement struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Module          string    `gorm:"type:varchar(255)" json:"module"`
	Menu            string    `gorm:"type:varchar(255)" json:"menu"`
	RequirementText string    `gorm:"type:text;not null" json:"requirement_text"`
	Category        string    `gorm:"type:varchar(100)" json:"category"`
	Baseline        string    `gorm:"type:varchar(100)" json:"baseline"`
	Status          string    `gorm:"type:varchar(50)" json:"status"`

	ProjectID       uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project         *Project  `gorm:"foreignKey:ProjectID" json:"-"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;not null" json:"created_by_user_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TaskRequirement links a task to a requirement it implements.
type TaskRequirement struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_task_requirement" json:"task_id"`
	RequirementID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_task_requirement" json:"requirement_id"`

	Requirement *Requirement `gorm:"foreignKey:RequirementID" json:"requirement,omitempty"`
}
