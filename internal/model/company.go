package model

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant boundary. Almost every entity hangs off a CompanyID.
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Code      string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"` // e.g. ACM-2024-001
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Users []User `gorm:"foreignKey:CompanyID" json:"-"`
}
