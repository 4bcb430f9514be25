package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestHasPermissionAllowed(t *testing.T) {
	f := newFixture(t)
	svc := NewPermissionService(f.db)
	f.grant(t, "TASKS_VIEW", true)

	allowed, err := svc.HasPermission(context.Background(), f.actor.ID, "TASKS_VIEW")
	if err != nil {
		t.Fatalf("HasPermission: %v", err)
	}
	if !allowed {
		t.Fatal("expected allowing grant to pass")
	}
}

func TestHasPermissionFailsClosed(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit deny", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPermissionService(f.db)
		f.grant(t, "TASKS_VIEW", false)

		allowed, err := svc.HasPermission(ctx, f.actor.ID, "TASKS_VIEW")
		if err != nil || allowed {
			t.Fatalf("deny row must yield (false, nil), got (%v, %v)", allowed, err)
		}
	})

	t.Run("missing grant row", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPermissionService(f.db)
		f.addPermission(t, "TASKS_VIEW")

		allowed, err := svc.HasPermission(ctx, f.actor.ID, "TASKS_VIEW")
		if err != nil || allowed {
			t.Fatalf("absent grant must yield (false, nil), got (%v, %v)", allowed, err)
		}
	})

	t.Run("unknown permission key", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPermissionService(f.db)

		allowed, err := svc.HasPermission(ctx, f.actor.ID, "NO_SUCH_KEY")
		if err != nil || allowed {
			t.Fatalf("unknown key must yield (false, nil), got (%v, %v)", allowed, err)
		}
	})

	t.Run("inactive permission", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPermissionService(f.db)
		perm := f.grant(t, "TASKS_VIEW", true)
		if err := f.db.Model(&perm).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate permission: %v", err)
		}

		allowed, err := svc.HasPermission(ctx, f.actor.ID, "TASKS_VIEW")
		if err != nil || allowed {
			t.Fatalf("inactive permission must yield (false, nil), got (%v, %v)", allowed, err)
		}
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPermissionService(f.db)
		f.grant(t, "TASKS_VIEW", true)
		f.deactivate(t, &f.actor)

		allowed, err := svc.HasPermission(ctx, f.actor.ID, "TASKS_VIEW")
		if err != nil || allowed {
			t.Fatalf("inactive user must yield (false, nil), got (%v, %v)", allowed, err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		svc := NewPermissionService(f.db)
		f.grant(t, "TASKS_VIEW", true)

		allowed, err := svc.HasPermission(ctx, uuid.New(), "TASKS_VIEW")
		if err != nil || allowed {
			t.Fatalf("unknown user must yield (false, nil), got (%v, %v)", allowed, err)
		}
	})
}

func TestCanViewMenu(t *testing.T) {
	f := newFixture(t)
	svc := NewPermissionService(f.db)
	ctx := context.Background()

	visible := f.addMenu(t, "tasks", "Tasks", nil, 1)
	denied := f.addMenu(t, "audit", "Audit", nil, 2)
	f.grantMenu(t, visible.ID, true)
	f.grantMenu(t, denied.ID, false)

	ok, err := svc.CanViewMenu(ctx, f.actor.ID, "tasks")
	if err != nil || !ok {
		t.Fatalf("expected visible menu, got (%v, %v)", ok, err)
	}

	ok, err = svc.CanViewMenu(ctx, f.actor.ID, "audit")
	if err != nil || ok {
		t.Fatalf("can_view=false must fail closed, got (%v, %v)", ok, err)
	}

	ok, err = svc.CanViewMenu(ctx, f.actor.ID, "missing")
	if err != nil || ok {
		t.Fatalf("unknown menu must fail closed, got (%v, %v)", ok, err)
	}
}

func TestListPermissionsExcludesInactive(t *testing.T) {
	f := newFixture(t)
	svc := NewPermissionService(f.db)

	f.addPermission(t, "B_KEY")
	f.addPermission(t, "A_KEY")
	retired := f.addPermission(t, "RETIRED_KEY")
	if err := f.db.Model(&retired).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate permission: %v", err)
	}

	perms, err := svc.ListPermissions(context.Background())
	if err != nil {
		t.Fatalf("ListPermissions: %v", err)
	}
	if len(perms) != 2 {
		t.Fatalf("expected 2 active permissions, got %d", len(perms))
	}
	if perms[0].Name != "A_KEY" || perms[1].Name != "B_KEY" {
		t.Fatalf("expected name ordering, got %+v", perms)
	}
	for _, p := range perms {
		if p.KeyName == "RETIRED_KEY" {
			t.Fatal("inactive permission leaked into the catalog")
		}
	}
}
