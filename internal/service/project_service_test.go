package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

func newProjectService(t *testing.T, f *fixture) ProjectService {
	t.Helper()
	keys := []string{
		"PROJECTS_VIEW", "PROJECTS_CREATE", "PROJECTS_EDIT", "PROJECTS_DELETE",
		"PROJECT_USERS_VIEW", "PROJECT_USERS_ADD",
	}
	for _, key := range keys {
		f.grant(t, key, true)
	}
	return NewProjectService(f.db, repository.NewUserRepository(f.db), NewPermissionService(f.db))
}

func TestProjectLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := newProjectService(t, f)
	ctx := context.Background()

	created, err := svc.Create(ctx, f.actor.ID, CreateProjectRequest{Name: "Revamp", Description: "Warehouse revamp"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.IsActive {
		t.Fatal("new projects start active")
	}

	inactive := false
	updated, err := svc.Update(ctx, f.actor.ID, created.ID, UpdateProjectRequest{Name: "Revamp v2", IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Revamp v2" || updated.IsActive {
		t.Fatalf("unexpected project after update: %+v", updated)
	}

	list, err := svc.List(ctx, f.actor.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 project, got %d", len(list))
	}

	if err := svc.Delete(ctx, f.actor.ID, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, f.actor.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteProjectWithTasks(t *testing.T) {
	f := newFixture(t)
	svc := newProjectService(t, f)
	ctx := context.Background()

	created, err := svc.Create(ctx, f.actor.ID, CreateProjectRequest{Name: "Revamp"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status := f.addStatus(t, "Pending", nil, true, false)
	task := model.Task{
		Module:          "Inbound",
		Description:     "x",
		Source:          model.TaskSourceManual,
		StartDate:       time.Now().UTC(),
		EndDate:         time.Now().UTC(),
		CompanyID:       f.company.ID,
		ProjectID:       created.ID,
		StatusID:        status.ID,
		CreatedByUserID: f.actor.ID,
	}
	if err := f.db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	err = svc.Delete(ctx, f.actor.ID, created.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState while tasks exist, got %v", err)
	}
}

func TestDeleteProjectDetachesTeams(t *testing.T) {
	f := newFixture(t)
	svc := newProjectService(t, f)
	ctx := context.Background()

	created, err := svc.Create(ctx, f.actor.ID, CreateProjectRequest{Name: "Revamp"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	team := f.addTeam(t, "Core", f.company.ID, 5)
	if err := f.db.Model(&team).Update("project_id", created.ID).Error; err != nil {
		t.Fatalf("attach team: %v", err)
	}

	if err := svc.Delete(ctx, f.actor.ID, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var row model.Team
	if err := f.db.First(&row, "id = ?", team.ID).Error; err != nil {
		t.Fatalf("reload team: %v", err)
	}
	if row.ProjectID != nil {
		t.Fatalf("team must be detached from the deleted project, got %v", row.ProjectID)
	}
}

func TestProjectMembers(t *testing.T) {
	f := newFixture(t)
	svc := newProjectService(t, f)
	ctx := context.Background()

	created, err := svc.Create(ctx, f.actor.ID, CreateProjectRequest{Name: "Revamp"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	member := f.addUser(t, "member@acme.test", f.company.ID, f.role.ID)

	if err := svc.AddMember(ctx, f.actor.ID, created.ID, member.ID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	err = svc.AddMember(ctx, f.actor.ID, created.ID, member.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("duplicate membership: expected ErrInvalidState, got %v", err)
	}

	other := model.Company{Name: "Rival", Code: "RIV-2026-001"}
	if err := f.db.Create(&other).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	outsider := f.addUser(t, "spy@rival.test", other.ID, f.role.ID)
	err = svc.AddMember(ctx, f.actor.ID, created.ID, outsider.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign user must read as missing, got %v", err)
	}

	members, err := svc.ListMembers(ctx, f.actor.ID, created.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].UserID != member.ID {
		t.Fatalf("unexpected roster %+v", members)
	}

	if err := svc.RemoveMember(ctx, f.actor.ID, created.ID, member.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	err = svc.RemoveMember(ctx, f.actor.ID, created.ID, member.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("removing a non-member: expected ErrNotFound, got %v", err)
	}
}
