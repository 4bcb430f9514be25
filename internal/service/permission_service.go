package service

import (
	"context"
	"errors"
	"fmt"

	"taskhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PermissionService resolves keyed capability checks and per-menu visibility
// for an acting user. Every check is a fresh data-driven lookup with no cache
// and no implicit admin bypass, so grant edits are visible on the very next
// request.
type PermissionService interface {
	// HasPermission reports whether the user's role holds an allowing grant
	// for the given permission key. Fails closed: an inactive or missing
	// user, an inactive or missing permission, or an absent grant row all
	// yield false, never an error.
	HasPermission(ctx context.Context, userID uuid.UUID, permissionKey string) (bool, error)

	// CanViewMenu reports whether the user's role can view the menu with the
	// given unique key. Fails closed on any missing link in the chain.
	CanViewMenu(ctx context.Context, userID uuid.UUID, menuKey string) (bool, error)

	// ListPermissions returns the active permission catalog, for grant
	// management UIs.
	ListPermissions(ctx context.Context) ([]model.Permission, error)
}

type permissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) PermissionService {
	return &permissionService{db: db}
}

func (s *permissionService) HasPermission(ctx context.Context, userID uuid.UUID, permissionKey string) (bool, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "id = ? AND is_active = ?", userID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve user: %w", err)
	}

	var permission model.Permission
	err = s.db.WithContext(ctx).First(&permission, "key_name = ? AND is_active = ?", permissionKey, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve permission '%s': %w", permissionKey, err)
	}

	var grant model.RolePermission
	err = s.db.WithContext(ctx).First(&grant, "role_id = ? AND permission_id = ?", user.RoleID, permission.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve grant: %w", err)
	}

	return grant.IsAllowed, nil
}

func (s *permissionService) CanViewMenu(ctx context.Context, userID uuid.UUID, menuKey string) (bool, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "id = ? AND is_active = ?", userID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve user: %w", err)
	}

	var count int64
	err = s.db.WithContext(ctx).
		Model(&model.RoleMenuPermission{}).
		Joins("JOIN menus ON menus.id = role_menu_permissions.menu_id").
		Where("role_menu_permissions.role_id = ? AND menus.unique_key = ? AND role_menu_permissions.can_view = ?",
			user.RoleID, menuKey, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to resolve menu grant: %w", err)
	}

	return count > 0, nil
}

func (s *permissionService) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	var perms []model.Permission
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name asc").
		Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}
	return perms, nil
}
