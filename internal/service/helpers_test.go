package service

import (
	"testing"

	"taskhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database named after the test, so
// parallel tests never share state, and migrates the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

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
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fixture is the minimal tenant every service test starts from: one company,
// one role and one active user holding that role.
type fixture struct {
	db      *gorm.DB
	company model.Company
	role    model.Role
	actor   model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{db: newTestDB(t)}

	f.company = model.Company{Name: "Acme Corp", Code: "ACM-2026-001"}
	if err := f.db.Create(&f.company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}

	f.role = model.Role{Name: "Member " + uuid.NewString()[:8]}
	if err := f.db.Create(&f.role).Error; err != nil {
		t.Fatalf("create role: %v", err)
	}

	f.actor = f.addUser(t, "actor@acme.test", f.company.ID, f.role.ID)
	return f
}

func (f *fixture) addUser(t *testing.T, email string, companyID, roleID uuid.UUID) model.User {
	t.Helper()

	user := model.User{
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
		IsActive:     true,
		RoleID:       roleID,
		CompanyID:    companyID,
	}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// deactivate flips is_active off with an explicit update; a zero bool on
// Create would be overridden by the column default.
func (f *fixture) deactivate(t *testing.T, value interface{}) {
	t.Helper()
	if err := f.db.Model(value).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
}

// grant ensures the permission key exists and attaches a grant row for the
// fixture role.
func (f *fixture) grant(t *testing.T, keyName string, allowed bool) model.Permission {
	t.Helper()

	perm := f.addPermission(t, keyName)
	rp := model.RolePermission{RoleID: f.role.ID, PermissionID: perm.ID, IsAllowed: allowed}
	if err := f.db.Create(&rp).Error; err != nil {
		t.Fatalf("grant %s: %v", keyName, err)
	}
	return perm
}

func (f *fixture) addPermission(t *testing.T, keyName string) model.Permission {
	t.Helper()

	var perm model.Permission
	err := f.db.Where(model.Permission{KeyName: keyName}).
		Attrs(model.Permission{Name: keyName, IsActive: true}).
		FirstOrCreate(&perm).Error
	if err != nil {
		t.Fatalf("permission %s: %v", keyName, err)
	}
	return perm
}

func (f *fixture) addMenu(t *testing.T, key, name string, parentID *uuid.UUID, sortOrder int) model.Menu {
	t.Helper()

	menu := model.Menu{
		UniqueKey:    key,
		Name:         name,
		Route:        "/" + key,
		ParentMenuID: parentID,
		SortOrder:    sortOrder,
		IsActive:     true,
	}
	if err := f.db.Create(&menu).Error; err != nil {
		t.Fatalf("create menu %s: %v", key, err)
	}
	return menu
}

func (f *fixture) grantMenu(t *testing.T, menuID uuid.UUID, canView bool) {
	t.Helper()

	rmp := model.RoleMenuPermission{RoleID: f.role.ID, MenuID: menuID, CanView: canView}
	if err := f.db.Create(&rmp).Error; err != nil {
		t.Fatalf("grant menu: %v", err)
	}
}

func (f *fixture) addStatus(t *testing.T, name string, companyID *uuid.UUID, isDefault, isFinal bool) model.TaskStatus {
	t.Helper()

	status := model.TaskStatus{Name: name, CompanyID: companyID, IsDefault: isDefault, IsFinal: isFinal}
	if err := f.db.Create(&status).Error; err != nil {
		t.Fatalf("create status %s: %v", name, err)
	}
	return status
}

func (f *fixture) addProject(t *testing.T, name string, companyID uuid.UUID) model.Project {
	t.Helper()

	project := model.Project{Name: name, IsActive: true, CompanyID: companyID}
	if err := f.db.Create(&project).Error; err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return project
}

func (f *fixture) addTeam(t *testing.T, name string, companyID uuid.UUID, maxMembers int) model.Team {
	t.Helper()

	team := model.Team{Name: name, MaxMembers: maxMembers, IsActive: true, CompanyID: companyID}
	if err := f.db.Create(&team).Error; err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	return team
}
