package service

import (
	"context"
	"errors"
	"testing"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

func newAuditService(f *fixture) AuditService {
	return NewAuditService(f.db, repository.NewUserRepository(f.db), NewPermissionService(f.db))
}

func (f *fixture) addAuditRow(t *testing.T, action string) {
	t.Helper()
	row := model.AuditLog{
		UserID:     &f.actor.ID,
		CompanyID:  &f.company.ID,
		Action:     action,
		EntityID:   f.actor.ID.String(),
		EntityName: "test",
	}
	if err := f.db.Create(&row).Error; err != nil {
		t.Fatalf("create audit row: %v", err)
	}
}

func TestGetAuditLogs(t *testing.T) {
	f := newFixture(t)
	svc := newAuditService(f)
	f.grant(t, "AUDIT_VIEW", true)
	ctx := context.Background()

	f.addAuditRow(t, model.ActionCreateTask)
	f.addAuditRow(t, model.ActionApproveTask)

	other := model.Company{Name: "Rival", Code: "RIV-2026-001"}
	if err := f.db.Create(&other).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	foreign := model.AuditLog{CompanyID: &other.ID, Action: model.ActionDeleteTask, EntityID: "x", EntityName: "x"}
	if err := f.db.Create(&foreign).Error; err != nil {
		t.Fatalf("create foreign audit row: %v", err)
	}

	logs, total, err := svc.GetAuditLogs(ctx, f.actor.ID, 1, 20)
	if err != nil {
		t.Fatalf("GetAuditLogs: %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("expected the 2 company rows, got total=%d len=%d", total, len(logs))
	}
	for _, l := range logs {
		if l.Action == model.ActionDeleteTask {
			t.Fatal("foreign audit row leaked")
		}
		if l.UserName != f.actor.FullName() {
			t.Fatalf("expected user name %q, got %q", f.actor.FullName(), l.UserName)
		}
	}
}

func TestGetAuditLogsSystemRows(t *testing.T) {
	f := newFixture(t)
	svc := newAuditService(f)
	f.grant(t, "AUDIT_VIEW", true)

	row := model.AuditLog{CompanyID: &f.company.ID, Action: model.ActionCreateTask, EntityID: "x", EntityName: "x"}
	if err := f.db.Create(&row).Error; err != nil {
		t.Fatalf("create audit row: %v", err)
	}

	logs, _, err := svc.GetAuditLogs(context.Background(), f.actor.ID, 1, 20)
	if err != nil {
		t.Fatalf("GetAuditLogs: %v", err)
	}
	if len(logs) != 1 || logs[0].UserName != "System" {
		t.Fatalf("actorless rows must display as System, got %+v", logs)
	}
}

func TestGetAuditLogsRequiresGrant(t *testing.T) {
	f := newFixture(t)
	svc := newAuditService(f)

	_, _, err := svc.GetAuditLogs(context.Background(), f.actor.ID, 1, 20)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden without AUDIT_VIEW, got %v", err)
	}
}

func TestGetAuditLogsPagination(t *testing.T) {
	f := newFixture(t)
	svc := newAuditService(f)
	f.grant(t, "AUDIT_VIEW", true)

	for i := 0; i < 5; i++ {
		f.addAuditRow(t, model.ActionCreateTask)
	}

	logs, total, err := svc.GetAuditLogs(context.Background(), f.actor.ID, 2, 2)
	if err != nil {
		t.Fatalf("GetAuditLogs: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(logs) != 2 {
		t.Fatalf("expected page of 2, got %d", len(logs))
	}
}
