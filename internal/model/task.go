package model

import (
	"time"

	"github.com/google/uuid"
)

// Task sources
const (
	TaskSourceManual = "Manual"
	TaskSourceImport = "Import"
)

// TaskStatus is a named lifecycle state. CompanyID == nil means the status is
// global and visible to every company. IsFinal locks further transitions;
// exactly one global status should carry IsDefault (seed-time invariant).
type TaskStatus struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	IsFinal   bool       `gorm:"default:false" json:"is_final"`
	IsDefault bool       `gorm:"default:false" json:"is_default"`
	SortOrder int        `gorm:"default:0" json:"sort_order"`
}

// Task is the central work item. It carries two lifecycle dimensions that are
// deliberately not reconciled: the StatusID state machine and the
// IsApproved/IsRejected flag pair (setting one clears the other).
type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Module      string    `gorm:"type:varchar(255);not null" json:"module"`
	Description string    `gorm:"type:text;not null" json:"description"`
	References  string    `gorm:"type:text" json:"references"`
	UserStory   string    `gorm:"type:text" json:"user_story"`
	Comment     string    `gorm:"type:text" json:"comment"`
	Source      string    `gorm:"type:varchar(50);not null;default:'Manual'" json:"source"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	IsApproved bool `gorm:"default:false" json:"is_approved"`
	IsRejected bool `gorm:"default:false" json:"is_rejected"`

	CompanyID uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	TeamID    *uuid.UUID `gorm:"type:uuid;index" json:"team_id"`
	Team      *Team      `gorm:"foreignKey:TeamID" json:"team,omitempty"`

	StatusID uuid.UUID   `gorm:"type:uuid;not null;index" json:"status_id"`
	Status   *TaskStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`

	CreatedByUserID uuid.UUID  `gorm:"type:uuid;not null" json:"created_by_user_id"`
	CreatedByUser   *User      `gorm:"foreignKey:CreatedByUserID" json:"created_by_user,omitempty"`
	ApprovedByID    *uuid.UUID `gorm:"type:uuid" json:"approved_by_id"`
	ApprovedBy      *User      `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectedByID    *uuid.UUID `gorm:"type:uuid" json:"rejected_by_id"`
	RejectedBy      *User      `gorm:"foreignKey:RejectedByID" json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at"`

	Assignments  []TaskAssignment  `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
	Requirements []TaskRequirement `gorm:"foreignKey:TaskID" json:"requirements,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TaskAssignment links a task to one of the company's users.
type TaskAssignment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_task_assignment" json:"task_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_task_assignment" json:"user_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
