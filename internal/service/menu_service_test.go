package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func node(key string, parentID *uuid.UUID) *MenuNode {
	return &MenuNode{MenuID: uuid.New(), UniqueKey: key, Name: key, ParentMenuID: parentID}
}

func TestBuildMenuTreeNesting(t *testing.T) {
	root := node("dashboard", nil)
	child := node("dashboard-tasks", &root.MenuID)
	grandchild := node("dashboard-tasks-overdue", &child.MenuID)

	roots := BuildMenuTree([]*MenuNode{root, child, grandchild})

	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	if len(roots[0].Children) != 1 || roots[0].Children[0].UniqueKey != "dashboard-tasks" {
		t.Fatalf("unexpected children of root: %+v", roots[0].Children)
	}
	if len(roots[0].Children[0].Children) != 1 || roots[0].Children[0].Children[0].UniqueKey != "dashboard-tasks-overdue" {
		t.Fatalf("unexpected grandchildren: %+v", roots[0].Children[0].Children)
	}
}

func TestBuildMenuTreeDropsOrphans(t *testing.T) {
	missing := uuid.New()
	root := node("users", nil)
	orphan := node("users-roles", &missing)

	roots := BuildMenuTree([]*MenuNode{root, orphan})

	if len(roots) != 1 {
		t.Fatalf("expected orphan to be dropped, got %d roots", len(roots))
	}
	if roots[0].UniqueKey != "users" {
		t.Fatalf("unexpected root %q", roots[0].UniqueKey)
	}
	if len(roots[0].Children) != 0 {
		t.Fatalf("orphan must not be attached anywhere, got %+v", roots[0].Children)
	}
}

func TestBuildMenuTreePreservesOrder(t *testing.T) {
	a := node("a", nil)
	b := node("b", nil)
	bOne := node("b-1", &b.MenuID)
	bTwo := node("b-2", &b.MenuID)

	roots := BuildMenuTree([]*MenuNode{a, b, bOne, bTwo})

	if len(roots) != 2 || roots[0].UniqueKey != "a" || roots[1].UniqueKey != "b" {
		t.Fatalf("root order not preserved: %+v", roots)
	}
	if len(roots[1].Children) != 2 ||
		roots[1].Children[0].UniqueKey != "b-1" ||
		roots[1].Children[1].UniqueKey != "b-2" {
		t.Fatalf("child order not preserved: %+v", roots[1].Children)
	}
}

func TestBuildMenuTreeEmpty(t *testing.T) {
	if roots := BuildMenuTree(nil); len(roots) != 0 {
		t.Fatalf("expected empty forest, got %+v", roots)
	}
}

func TestMenusByUser(t *testing.T) {
	f := newFixture(t)
	svc := NewMenuService(f.db)
	ctx := context.Background()

	parent := f.addMenu(t, "admin", "Administration", nil, 1)
	child := f.addMenu(t, "admin-users", "Users", &parent.ID, 2)
	hidden := f.addMenu(t, "reports", "Reports", nil, 3)
	inactive := f.addMenu(t, "legacy", "Legacy", nil, 4)
	f.deactivate(t, &inactive)

	f.grantMenu(t, parent.ID, true)
	f.grantMenu(t, child.ID, true)
	f.grantMenu(t, hidden.ID, false)
	f.grantMenu(t, inactive.ID, true)

	menus, err := svc.MenusByUser(ctx, f.actor.ID)
	if err != nil {
		t.Fatalf("MenusByUser: %v", err)
	}

	if len(menus) != 1 {
		t.Fatalf("expected only the granted active root, got %d roots", len(menus))
	}
	if menus[0].UniqueKey != "admin" {
		t.Fatalf("unexpected root %q", menus[0].UniqueKey)
	}
	if len(menus[0].Children) != 1 || menus[0].Children[0].UniqueKey != "admin-users" {
		t.Fatalf("unexpected children: %+v", menus[0].Children)
	}
}

func TestMenusByUserChildWithoutVisibleParent(t *testing.T) {
	f := newFixture(t)
	svc := NewMenuService(f.db)

	parent := f.addMenu(t, "admin", "Administration", nil, 1)
	child := f.addMenu(t, "admin-users", "Users", &parent.ID, 2)
	f.grantMenu(t, child.ID, true)

	menus, err := svc.MenusByUser(context.Background(), f.actor.ID)
	if err != nil {
		t.Fatalf("MenusByUser: %v", err)
	}
	if len(menus) != 0 {
		t.Fatalf("child without a visible parent must be dropped, got %+v", menus)
	}
}

func TestMenusByUserInactiveUser(t *testing.T) {
	f := newFixture(t)
	svc := NewMenuService(f.db)
	f.deactivate(t, &f.actor)

	_, err := svc.MenusByUser(context.Background(), f.actor.ID)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
