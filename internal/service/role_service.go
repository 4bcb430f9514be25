package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"taskhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateRoleRequest struct {
	Name string `json:"name" binding:"required"`
}

// PermissionGrant is one (permission, allowed) pair of a wholesale grant set.
type PermissionGrant struct {
	PermissionID uuid.UUID `json:"permission_id" binding:"required"`
	IsAllowed    bool      `json:"is_allowed"`
}

// MenuGrant is one per-menu capability row of a wholesale grant set.
type MenuGrant struct {
	MenuID     uuid.UUID `json:"menu_id" binding:"required"`
	CanView    bool      `json:"can_view"`
	CanCreate  bool      `json:"can_create"`
	CanEdit    bool      `json:"can_edit"`
	CanDelete  bool      `json:"can_delete"`
	CanApprove bool      `json:"can_approve"`
	CanReject  bool      `json:"can_reject"`
}

type RoleResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	IsSystem bool      `json:"is_system"`
}

// --- Interface ---

// RoleService owns roles and their grant sets. Grants are replaced wholesale,
// never merged, and each replacement runs in a single transaction so a crash
// can't leave a role half-granted.
type RoleService interface {
	ListRoles(ctx context.Context, actorID uuid.UUID) ([]RoleResponse, error)
	CreateRole(ctx context.Context, actorID uuid.UUID, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, actorID, roleID uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, actorID, roleID uuid.UUID) error
	GetPermissionGrants(ctx context.Context, actorID, roleID uuid.UUID) ([]PermissionGrant, error)
	ReplacePermissionGrants(ctx context.Context, actorID, roleID uuid.UUID, grants []PermissionGrant) error
	GetMenuGrants(ctx context.Context, actorID, roleID uuid.UUID) ([]MenuGrant, error)
	ReplaceMenuGrants(ctx context.Context, actorID, roleID uuid.UUID, grants []MenuGrant) error
}

type roleService struct {
	db    *gorm.DB
	perms PermissionService
}

func NewRoleService(db *gorm.DB, perms PermissionService) RoleService {
	return &roleService{db: db, perms: perms}
}

// --- Implementation ---

func (s *roleService) requirePermission(ctx context.Context, actorID uuid.UUID, key string) error {
	allowed, err := s.perms.HasPermission(ctx, actorID, key)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("missing permission '%s': %w", key, ErrForbidden)
	}
	return nil
}

func (s *roleService) getRole(ctx context.Context, roleID uuid.UUID) (*model.Role, error) {
	var role model.Role
	err := s.db.WithContext(ctx).First(&role, "id = ?", roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("role not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch role: %w", err)
	}
	return &role, nil
}

func (s *roleService) ListRoles(ctx context.Context, actorID uuid.UUID) ([]RoleResponse, error) {
	if err := s.requirePermission(ctx, actorID, "ROLE_MANAGE"); err != nil {
		return nil, err
	}

	var roles []model.Role
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) CreateRole(ctx context.Context, actorID uuid.UUID, req CreateRoleRequest) (*RoleResponse, error) {
	if err := s.requirePermission(ctx, actorID, "ROLE_MANAGE"); err != nil {
		return nil, err
	}

	role := model.Role{Name: req.Name}
	if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	resp := toRoleResponse(role)
	return &resp, nil
}

func (s *roleService) UpdateRole(ctx context.Context, actorID, roleID uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	if err := s.requirePermission(ctx, actorID, "ROLE_MANAGE"); err != nil {
		return nil, err
	}

	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	role.Name = req.Name
	if err := s.db.WithContext(ctx).Save(role).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	resp := toRoleResponse(*role)
	return &resp, nil
}

func (s *roleService) DeleteRole(ctx context.Context, actorID, roleID uuid.UUID) error {
	if err := s.requirePermission(ctx, actorID, "ROLE_MANAGE"); err != nil {
		return err
	}

	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("cannot delete system role '%s': %w", role.Name, ErrInvalidState)
	}

	var userCount int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("role_id = ?", roleID).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to count role users: %w", err)
	}
	if userCount > 0 {
		return fmt.Errorf("role is assigned to %d user(s): %w", userCount, ErrInvalidState)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&model.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear permission grants: %w", err)
		}
		if err := tx.Where("role_id = ?", roleID).Delete(&model.RoleMenuPermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear menu grants: %w", err)
		}
		if err := tx.Delete(role).Error; err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}
		return nil
	})
}

func (s *roleService) GetPermissionGrants(ctx context.Context, actorID, roleID uuid.UUID) ([]PermissionGrant, error) {
	if err := s.requirePermission(ctx, actorID, "ROLE_PERMISSIONS_MANAGE"); err != nil {
		return nil, err
	}

	var rows []model.RolePermission
	if err := s.db.WithContext(ctx).Where("role_id = ?", roleID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch grants: %w", err)
	}

	grants := make([]PermissionGrant, 0, len(rows))
	for _, r := range rows {
		grants = append(grants, PermissionGrant{PermissionID: r.PermissionID, IsAllowed: r.IsAllowed})
	}
	return grants, nil
}

// ReplacePermissionGrants swaps the role's entire grant set in one
// transaction.
func (s *roleService) ReplacePermissionGrants(ctx context.Context, actorID, roleID uuid.UUID, grants []PermissionGrant) error {
	if err := s.requirePermission(ctx, actorID, "ROLE_PERMISSIONS_MANAGE"); err != nil {
		return err
	}

	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&model.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear grants: %w", err)
		}
		for _, g := range grants {
			row := model.RolePermission{RoleID: roleID, PermissionID: g.PermissionID, IsAllowed: g.IsAllowed}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to write grant: %w", err)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{"grant_count": len(grants)})
		audit := model.AuditLog{
			UserID:     &actorID,
			CompanyID:  s.actorCompany(ctx, actorID),
			Action:     model.ActionReplaceRoleGrants,
			EntityID:   roleID.String(),
			EntityName: role.Name,
			Details:    string(details),
		}
		return tx.Create(&audit).Error
	})
}

func (s *roleService) GetMenuGrants(ctx context.Context, actorID, roleID uuid.UUID) ([]MenuGrant, error) {
	if err := s.requirePermission(ctx, actorID, "ROLE_PERMISSIONS_MANAGE"); err != nil {
		return nil, err
	}

	var rows []model.RoleMenuPermission
	if err := s.db.WithContext(ctx).Where("role_id = ?", roleID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch menu grants: %w", err)
	}

	grants := make([]MenuGrant, 0, len(rows))
	for _, r := range rows {
		grants = append(grants, MenuGrant{
			MenuID:     r.MenuID,
			CanView:    r.CanView,
			CanCreate:  r.CanCreate,
			CanEdit:    r.CanEdit,
			CanDelete:  r.CanDelete,
			CanApprove: r.CanApprove,
			CanReject:  r.CanReject,
		})
	}
	return grants, nil
}

// ReplaceMenuGrants swaps the role's entire menu grant set in one
// transaction.
func (s *roleService) ReplaceMenuGrants(ctx context.Context, actorID, roleID uuid.UUID, grants []MenuGrant) error {
	if err := s.requirePermission(ctx, actorID, "ROLE_PERMISSIONS_MANAGE"); err != nil {
		return err
	}

	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&model.RoleMenuPermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear menu grants: %w", err)
		}
		for _, g := range grants {
			row := model.RoleMenuPermission{
				RoleID:     roleID,
				MenuID:     g.MenuID,
				CanView:    g.CanView,
				CanCreate:  g.CanCreate,
				CanEdit:    g.CanEdit,
				CanDelete:  g.CanDelete,
				CanApprove: g.CanApprove,
				CanReject:  g.CanReject,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to write menu grant: %w", err)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{"grant_count": len(grants)})
		audit := model.AuditLog{
			UserID:     &actorID,
			CompanyID:  s.actorCompany(ctx, actorID),
			Action:     model.ActionReplaceMenuGrants,
			EntityID:   roleID.String(),
			EntityName: role.Name,
			Details:    string(details),
		}
		return tx.Create(&audit).Error
	})
}

// --- Helpers ---

// actorCompany resolves the actor's company for audit attribution. Nil when
// the lookup fails so the audit row still lands.
func (s *roleService) actorCompany(ctx context.Context, actorID uuid.UUID) *uuid.UUID {
	var user model.User
	if err := s.db.WithContext(ctx).Select("company_id").First(&user, "id = ?", actorID).Error; err != nil {
		return nil
	}
	return &user.CompanyID
}

func toRoleResponse(r model.Role) RoleResponse {
	return RoleResponse{ID: r.ID, Name: r.Name, IsSystem: r.IsSystem}
}
