package database

import (
	"context"
	"errors"
	"fmt"

	"taskhub/internal/model"

	"gorm.io/gorm"
)

// Seed upserts the permission catalog, global task statuses, the menu tree and
// the built-in SuperAdmin role with full grants. Safe to run on every startup.
func Seed(ctx context.Context, db *gorm.DB) error {
	perms, err := seedPermissions(ctx, db)
	if err != nil {
		return err
	}

	menus, err := seedMenus(ctx, db)
	if err != nil {
		return err
	}

	if err := seedStatuses(ctx, db); err != nil {
		return err
	}

	return seedSuperAdminRole(ctx, db, perms, menus)
}

func seedPermissions(ctx context.Context, db *gorm.DB) ([]model.Permission, error) {
	catalog := []model.Permission{
		{KeyName: "USERS_VIEW", Name: "View users"},
		{KeyName: "USERS_CREATE", Name: "Create users"},
		{KeyName: "USERS_EDIT", Name: "Edit users"},
		{KeyName: "USERS_DELETE", Name: "Delete users"},
		{KeyName: "TEAMS_VIEW", Name: "View teams"},
		{KeyName: "TEAMS_ADD", Name: "Create teams"},
		{KeyName: "TEAMS_EDIT", Name: "Edit teams"},
		{KeyName: "TEAMS_DELETE", Name: "Delete teams"},
		{KeyName: "TEAMS_MEMBERS_VIEW", Name: "View team members"},
		{KeyName: "PROJECTS_VIEW", Name: "View projects"},
		{KeyName: "PROJECTS_CREATE", Name: "Create projects"},
		{KeyName: "PROJECTS_EDIT", Name: "Edit projects"},
		{KeyName: "PROJECTS_DELETE", Name: "Delete projects"},
		{KeyName: "PROJECT_USERS_VIEW", Name: "View project users"},
		{KeyName: "PROJECT_USERS_ADD", Name: "Add project users"},
		{KeyName: "TASKS_VIEW", Name: "View tasks"},
		{KeyName: "TASKS_CREATE", Name: "Create tasks"},
		{KeyName: "TASKS_EDIT", Name: "Edit tasks"},
		{KeyName: "TASKS_DELETE", Name: "Delete tasks"},
		{KeyName: "TASKS_APPROVE", Name: "Approve or reject tasks"},
		{KeyName: "REQUIREMENTS_VIEW", Name: "View requirements"},
		{KeyName: "REQUIREMENTS_CREATE", Name: "Create requirements"},
		{KeyName: "REQUIREMENTS_EDIT", Name: "Edit requirements"},
		{KeyName: "REQUIREMENTS_DELETE", Name: "Delete requirements"},
		{KeyName: "TASK_REQUIREMENTS_VIEW", Name: "View task requirements"},
		{KeyName: "TASK_REQUIREMENTS_ADD", Name: "Link task requirements"},
		{KeyName: "ROLE_MANAGE", Name: "Manage roles"},
		{KeyName: "ROLE_PERMISSIONS_MANAGE", Name: "Manage role grants"},
		{KeyName: "AUDIT_VIEW", Name: "View audit logs"},
	}

	for i := range catalog {
		p := &catalog[i]
		var existing model.Permission
		err := db.WithContext(ctx).Where("key_name = ?", p.KeyName).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p.IsActive = true
			if err := db.WithContext(ctx).Create(p).Error; err != nil {
				return nil, fmt.Errorf("failed to seed permission '%s': %w", p.KeyName, err)
			}
		case err != nil:
			return nil, fmt.Errorf("failed to look up permission '%s': %w", p.KeyName, err)
		default:
			p.ID = existing.ID
		}
	}

	return catalog, nil
}

type menuSeed struct {
	key       string
	name      string
	route     string
	icon      string
	parentKey string
	sortOrder int
}

func seedMenus(ctx context.Context, db *gorm.DB) ([]model.Menu, error) {
	defs := []menuSeed{
		{key: "DASHBOARD", name: "Dashboard", route: "/dashboard", icon: "gauge", sortOrder: 1},
		{key: "PROJECTS", name: "Projects", route: "/projects", icon: "folder", sortOrder: 2},
		{key: "TEAMS", name: "Teams", route: "/teams", icon: "users", sortOrder: 3},
		{key: "TASKS", name: "Tasks", route: "/tasks", icon: "list-checks", sortOrder: 4},
		{key: "REQUIREMENTS", name: "Requirements", route: "/requirements", icon: "file-text", sortOrder: 5},
		{key: "ADMIN", name: "Administration", icon: "settings", sortOrder: 6},
		{key: "ADMIN_USERS", name: "Users", route: "/admin/users", icon: "user", parentKey: "ADMIN", sortOrder: 7},
		{key: "ADMIN_ROLES", name: "Roles & Permissions", route: "/admin/roles", icon: "shield", parentKey: "ADMIN", sortOrder: 8},
		{key: "ADMIN_AUDIT", name: "Audit Log", route: "/admin/audit", icon: "history", parentKey: "ADMIN", sortOrder: 9},
	}

	byKey := make(map[string]*model.Menu, len(defs))
	menus := make([]model.Menu, 0, len(defs))
	for _, d := range defs {
		var menu model.Menu
		err := db.WithContext(ctx).Where("unique_key = ?", d.key).First(&menu).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up menu '%s': %w", d.key, err)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			menu = model.Menu{
				UniqueKey: d.key,
				Name:      d.name,
				Route:     d.route,
				Icon:      d.icon,
				SortOrder: d.sortOrder,
				IsActive:  true,
			}
			if d.parentKey != "" {
				parent, ok := byKey[d.parentKey]
				if !ok {
					return nil, fmt.Errorf("menu seed '%s' references unknown parent '%s'", d.key, d.parentKey)
				}
				menu.ParentMenuID = &parent.ID
			}
			if err := db.WithContext(ctx).Create(&menu).Error; err != nil {
				return nil, fmt.Errorf("failed to seed menu '%s': %w", d.key, err)
			}
		}
		menus = append(menus, menu)
		byKey[d.key] = &menus[len(menus)-1]
	}

	return menus, nil
}

// seedStatuses creates the global status set. Exactly one status carries
// IsDefault; Completed and Rejected are final.
func seedStatuses(ctx context.Context, db *gorm.DB) error {
	statuses := []model.TaskStatus{
		{Name: "Pending", IsDefault: true, SortOrder: 1},
		{Name: "In Progress", SortOrder: 2},
		{Name: "Completed", IsFinal: true, SortOrder: 3},
		{Name: "Rejected", IsFinal: true, SortOrder: 4},
	}

	for _, s := range statuses {
		var existing model.TaskStatus
		err := db.WithContext(ctx).Where("name = ? AND company_id IS NULL", s.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.WithContext(ctx).Create(&s).Error; err != nil {
				return fmt.Errorf("failed to seed task status '%s': %w", s.Name, err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to look up task status '%s': %w", s.Name, err)
		}
	}

	return nil
}

func seedSuperAdminRole(ctx context.Context, db *gorm.DB, perms []model.Permission, menus []model.Menu) error {
	var role model.Role
	err := db.WithContext(ctx).Where("name = ?", "SuperAdmin").First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = model.Role{Name: "SuperAdmin", IsSystem: true}
		if err := db.WithContext(ctx).Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed SuperAdmin role: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to look up SuperAdmin role: %w", err)
	}

	for _, p := range perms {
		var grant model.RolePermission
		err := db.WithContext(ctx).Where("role_id = ? AND permission_id = ?", role.ID, p.ID).First(&grant).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up SuperAdmin grant '%s': %w", p.KeyName, err)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			grant = model.RolePermission{RoleID: role.ID, PermissionID: p.ID, IsAllowed: true}
			if err := db.WithContext(ctx).Create(&grant).Error; err != nil {
				return fmt.Errorf("failed to grant '%s' to SuperAdmin: %w", p.KeyName, err)
			}
		}
	}

	for _, m := range menus {
		var grant model.RoleMenuPermission
		err := db.WithContext(ctx).Where("role_id = ? AND menu_id = ?", role.ID, m.ID).First(&grant).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up SuperAdmin menu grant '%s': %w", m.UniqueKey, err)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			grant = model.RoleMenuPermission{
				RoleID: role.ID, MenuID: m.ID,
				CanView: true, CanCreate: true, CanEdit: true,
				CanDelete: true, CanApprove: true, CanReject: true,
			}
			if err := db.WithContext(ctx).Create(&grant).Error; err != nil {
				return fmt.Errorf("failed to grant menu '%s' to SuperAdmin: %w", m.UniqueKey, err)
			}
		}
	}

	return nil
}
