package service

import (
	"context"
	"errors"
	"fmt"

	"taskhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuNode is one entry of the navigation tree returned to the UI.
type MenuNode struct {
	MenuID       uuid.UUID   `json:"menu_id"`
	UniqueKey    string      `json:"unique_key"`
	Name         string      `json:"name"`
	Route        string      `json:"route"`
	Icon         string      `json:"icon"`
	ParentMenuID *uuid.UUID  `json:"parent_menu_id"`
	Children     []*MenuNode `json:"children"`
}

// MenuService shapes role-gated navigation data.
type MenuService interface {
	// MenusByUser returns the acting user's visible menus as a forest,
	// ordered by SortOrder.
	MenusByUser(ctx context.Context, userID uuid.UUID) ([]*MenuNode, error)
}

type menuService struct {
	db *gorm.DB
}

func NewMenuService(db *gorm.DB) MenuService {
	return &menuService{db: db}
}

func (s *menuService) MenusByUser(ctx context.Context, userID uuid.UUID) ([]*MenuNode, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "id = ? AND is_active = ?", userID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	var grants []model.RoleMenuPermission
	if err := s.db.WithContext(ctx).
		Preload("Menu").
		Joins("JOIN menus ON menus.id = role_menu_permissions.menu_id").
		Where("role_menu_permissions.role_id = ? AND role_menu_permissions.can_view = ? AND menus.is_active = ?",
			user.RoleID, true, true).
		Order("menus.sort_order asc").
		Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch menu grants: %w", err)
	}

	nodes := make([]*MenuNode, 0, len(grants))
	for _, g := range grants {
		if g.Menu == nil {
			continue
		}
		nodes = append(nodes, &MenuNode{
			MenuID:       g.Menu.ID,
			UniqueKey:    g.Menu.UniqueKey,
			Name:         g.Menu.Name,
			Route:        g.Menu.Route,
			Icon:         g.Menu.Icon,
			ParentMenuID: g.Menu.ParentMenuID,
		})
	}

	return BuildMenuTree(nodes), nil
}

// BuildMenuTree assembles a flat, pre-sorted, pre-filtered menu list into a
// forest. Nodes with a nil parent become roots; nodes whose parent is missing
// from the input (the user can see a child but not its parent) are dropped,
// not promoted to root. Input order is preserved for roots and children.
func BuildMenuTree(nodes []*MenuNode) []*MenuNode {
	index := make(map[uuid.UUID]*MenuNode, len(nodes))
	for _, n := range nodes {
		n.Children = []*MenuNode{}
		index[n.MenuID] = n
	}

	roots := []*MenuNode{}
	for _, n := range nodes {
		if n.ParentMenuID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := index[*n.ParentMenuID]; ok {
			parent.Children = append(parent.Children, n)
		}
	}

	return roots
}
