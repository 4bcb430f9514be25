package database

import (
	"context"
	"testing"

	"taskhub/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&model.Permission{},
		&model.Menu{},
		&model.TaskStatus{},
		&model.Role{},
		&model.RolePermission{},
		&model.RoleMenuPermission{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newSeedDB(t)
	ctx := context.Background()

	if err := Seed(ctx, db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var afterPerms int64
	if err := db.Model(&model.Permission{}).Count(&afterPerms).Error; err != nil {
		t.Fatalf("count permissions: %v", err)
	}
	if afterPerms == 0 {
		t.Fatal("expected seeded permissions")
	}

	var dup int64
	if err := db.Model(&model.Permission{}).Where("key_name = ?", "TASKS_VIEW").Count(&dup).Error; err != nil {
		t.Fatalf("count TASKS_VIEW rows: %v", err)
	}
	if dup != 1 {
		t.Fatalf("expected a single TASKS_VIEW row after reseeding, got %d", dup)
	}

	var statuses []model.TaskStatus
	if err := db.Order("sort_order asc").Find(&statuses).Error; err != nil {
		t.Fatalf("load statuses: %v", err)
	}
	if len(statuses) != 4 {
		t.Fatalf("expected 4 global statuses, got %d", len(statuses))
	}
	if !statuses[0].IsDefault || statuses[0].Name != "Pending" {
		t.Fatalf("expected Pending as default first status, got %+v", statuses[0])
	}

	var role model.Role
	if err := db.Where("name = ?", "SuperAdmin").First(&role).Error; err != nil {
		t.Fatalf("load SuperAdmin: %v", err)
	}
	if !role.IsSystem {
		t.Fatal("expected SuperAdmin to be a system role")
	}

	var grants int64
	if err := db.Model(&model.RolePermission{}).Where("role_id = ?", role.ID).Count(&grants).Error; err != nil {
		t.Fatalf("count grants: %v", err)
	}
	if grants != afterPerms {
		t.Fatalf("expected SuperAdmin to hold every permission (%d), got %d grants", afterPerms, grants)
	}
}
