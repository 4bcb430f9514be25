package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

func TestCompletionRate(t *testing.T) {
	cases := []struct {
		completed int64
		total     int64
		want      string
	}{
		{0, 0, "0.00"},
		{0, 10, "0.00"},
		{1, 3, "33.33"},
		{2, 3, "66.67"},
		{10, 10, "100.00"},
	}
	for _, tc := range cases {
		if got := completionRate(tc.completed, tc.total); got != tc.want {
			t.Errorf("completionRate(%d, %d) = %q, want %q", tc.completed, tc.total, got, tc.want)
		}
	}
}

func TestDashboardOverview(t *testing.T) {
	env := newTaskEnv(t)
	svc := NewDashboardService(env.db, repository.NewUserRepository(env.db), repository.NewTaskRepository(env.db), NewPermissionService(env.db))
	ctx := context.Background()

	env.addTeam(t, "Core", env.company.ID, 5)

	first := env.createTask(t, CreateTaskRequest{})
	env.createTask(t, CreateTaskRequest{StatusID: &env.active.ID})
	env.createTask(t, CreateTaskRequest{
		StartDate: time.Now().UTC().Add(-96 * time.Hour),
		EndDate:   time.Now().UTC().Add(-24 * time.Hour),
	})

	if _, err := env.svc.Approve(ctx, env.actor.ID, first.ID); err != nil {
		t.Fatalf("approve task: %v", err)
	}

	overview, err := svc.Overview(ctx, env.actor.ID)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}

	if overview.TotalTasks != 3 {
		t.Fatalf("expected 3 tasks, got %d", overview.TotalTasks)
	}
	if overview.CompletedTasks != 1 {
		t.Fatalf("expected 1 completed task, got %d", overview.CompletedTasks)
	}
	if overview.OverdueTasks != 1 {
		t.Fatalf("expected 1 overdue task, got %d", overview.OverdueTasks)
	}
	if overview.TotalProjects != 1 || overview.TotalTeams != 1 || overview.TotalUsers != 1 {
		t.Fatalf("unexpected entity counts: %+v", overview)
	}
	if overview.CompletionRate != "33.33" {
		t.Fatalf("expected completion rate 33.33, got %q", overview.CompletionRate)
	}

	counts := map[string]int64{}
	for _, sc := range overview.TasksByStatus {
		counts[sc.StatusName] = sc.Count
	}
	if counts["Pending"] != 2 || counts["In Progress"] != 1 {
		t.Fatalf("unexpected status breakdown %v", counts)
	}
}

func TestDashboardScopedToCompany(t *testing.T) {
	env := newTaskEnv(t)
	svc := NewDashboardService(env.db, repository.NewUserRepository(env.db), repository.NewTaskRepository(env.db), NewPermissionService(env.db))
	ctx := context.Background()

	env.createTask(t, CreateTaskRequest{})

	other := model.Company{Name: "Rival", Code: "RIV-2026-001"}
	if err := env.db.Create(&other).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	outsider := env.addUser(t, "peer@rival.test", other.ID, env.role.ID)

	overview, err := svc.Overview(ctx, outsider.ID)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.TotalTasks != 0 {
		t.Fatalf("foreign tasks leaked into the dashboard: %d", overview.TotalTasks)
	}
	if overview.TotalUsers != 1 {
		t.Fatalf("expected only the outsider in their company, got %d", overview.TotalUsers)
	}
}

func TestDashboardRequiresGrant(t *testing.T) {
	f := newFixture(t)
	svc := NewDashboardService(f.db, repository.NewUserRepository(f.db), repository.NewTaskRepository(f.db), NewPermissionService(f.db))

	_, err := svc.Overview(context.Background(), f.actor.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden without TASKS_VIEW, got %v", err)
	}
}
