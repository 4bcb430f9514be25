package database

import (
	"log"

	"taskhub/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Company{},
		&model.Role{},
		&model.Permission{},
		&model.RolePermission{},
		&model.Menu{},
		&model.RoleMenuPermission{},
		&model.User{},
		&model.Project{},
		&model.ProjectUser{},
		&model.Team{},
		&model.UserTeam{},
		&model.TaskStatus{},
		&model.Task{},
		&model.TaskAssignment{},
		&model.Requirement{},
		&model.TaskRequirement{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
