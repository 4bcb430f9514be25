package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/repository"
)

func newTeamService(t *testing.T, f *fixture) TeamService {
	t.Helper()
	for _, key := range []string{"TEAMS_VIEW", "TEAMS_ADD", "TEAMS_EDIT", "TEAMS_DELETE", "TEAMS_MEMBERS_VIEW"} {
		f.grant(t, key, true)
	}
	return NewTeamService(f.db, repository.NewUserRepository(f.db), NewPermissionService(f.db))
}

func TestCreateTeamCapacityBounds(t *testing.T) {
	f := newFixture(t)
	svc := newTeamService(t, f)
	ctx := context.Background()

	for _, bad := range []int{0, 4, 11} {
		_, err := svc.Create(ctx, f.actor.ID, CreateTeamRequest{Name: "Core", MaxMembers: bad})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("max_members=%d: expected ErrInvalidArgument, got %v", bad, err)
		}
	}

	for _, ok := range []int{5, 10} {
		team, err := svc.Create(ctx, f.actor.ID, CreateTeamRequest{Name: fmt.Sprintf("Core %d", ok), MaxMembers: ok})
		if err != nil {
			t.Fatalf("max_members=%d: %v", ok, err)
		}
		if team.MaxMembers != ok {
			t.Fatalf("expected max_members %d, got %d", ok, team.MaxMembers)
		}
	}
}

func TestAddMember(t *testing.T) {
	f := newFixture(t)
	svc := newTeamService(t, f)
	ctx := context.Background()

	team, err := svc.Create(ctx, f.actor.ID, CreateTeamRequest{Name: "Core", MaxMembers: 5})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	member := f.addUser(t, "member@acme.test", f.company.ID, f.role.ID)
	if err := svc.AddMember(ctx, f.actor.ID, team.ID, member.ID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	err = svc.AddMember(ctx, f.actor.ID, team.ID, member.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("duplicate membership: expected ErrInvalidState, got %v", err)
	}
}

func TestAddMemberAtCapacity(t *testing.T) {
	f := newFixture(t)
	svc := newTeamService(t, f)
	ctx := context.Background()

	team, err := svc.Create(ctx, f.actor.ID, CreateTeamRequest{Name: "Core", MaxMembers: 5})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	for i := 0; i < 5; i++ {
		u := f.addUser(t, fmt.Sprintf("member%d@acme.test", i), f.company.ID, f.role.ID)
		if err := svc.AddMember(ctx, f.actor.ID, team.ID, u.ID); err != nil {
			t.Fatalf("add member %d: %v", i, err)
		}
	}

	extra := f.addUser(t, "overflow@acme.test", f.company.ID, f.role.ID)
	err = svc.AddMember(ctx, f.actor.ID, team.ID, extra.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState at capacity, got %v", err)
	}
}

func TestAddMemberForeignUser(t *testing.T) {
	f := newFixture(t)
	svc := newTeamService(t, f)
	ctx := context.Background()

	team, err := svc.Create(ctx, f.actor.ID, CreateTeamRequest{Name: "Core", MaxMembers: 5})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	other := model.Company{Name: "Rival", Code: "RIV-2026-001"}
	if err := f.db.Create(&other).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	outsider := f.addUser(t, "spy@rival.test", other.ID, f.role.ID)

	err = svc.AddMember(ctx, f.actor.ID, team.ID, outsider.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign user must read as missing, got %v", err)
	}
}

func TestUpdateTeamShrinkBelowRoster(t *testing.T) {
	f := newFixture(t)
	svc := newTeamService(t, f)
	ctx := context.Background()

	team, err := svc.Create(ctx, f.actor.ID, CreateTeamRequest{Name: "Core", MaxMembers: 10})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	for i := 0; i < 6; i++ {
		u := f.addUser(t, fmt.Sprintf("member%d@acme.test", i), f.company.ID, f.role.ID)
		if err := svc.AddMember(ctx, f.actor.ID, team.ID, u.ID); err != nil {
			t.Fatalf("add member %d: %v", i, err)
		}
	}

	five := 5
	_, err = svc.Update(ctx, f.actor.ID, team.ID, UpdateTeamRequest{MaxMembers: &five})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("shrinking below the roster must fail, got %v", err)
	}

	seven := 7
	updated, err := svc.Update(ctx, f.actor.ID, team.ID, UpdateTeamRequest{MaxMembers: &seven})
	if err != nil {
		t.Fatalf("shrink above roster: %v", err)
	}
	if updated.MaxMembers != 7 {
		t.Fatalf("expected max_members 7, got %d", updated.MaxMembers)
	}
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	svc := newTeamService(t, f)
	ctx := context.Background()

	team, err := svc.Create(ctx, f.actor.ID, CreateTeamRequest{Name: "Core", MaxMembers: 5})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	member := f.addUser(t, "member@acme.test", f.company.ID, f.role.ID)
	if err := svc.AddMember(ctx, f.actor.ID, team.ID, member.ID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := svc.RemoveMember(ctx, f.actor.ID, team.ID, member.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	err = svc.RemoveMember(ctx, f.actor.ID, team.ID, member.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("removing a non-member: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTeamWithTasks(t *testing.T) {
	f := newFixture(t)
	svc := newTeamService(t, f)
	ctx := context.Background()

	team, err := svc.Create(ctx, f.actor.ID, CreateTeamRequest{Name: "Core", MaxMembers: 5})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	project := f.addProject(t, "Revamp", f.company.ID)
	status := f.addStatus(t, "Pending", nil, true, false)
	task := model.Task{
		Module:          "Inbound",
		Description:     "x",
		Source:          model.TaskSourceManual,
		StartDate:       time.Now().UTC(),
		EndDate:         time.Now().UTC(),
		CompanyID:       f.company.ID,
		ProjectID:       project.ID,
		TeamID:          &team.ID,
		StatusID:        status.ID,
		CreatedByUserID: f.actor.ID,
	}
	if err := f.db.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}

	err = svc.Delete(ctx, f.actor.ID, team.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState while tasks reference the team, got %v", err)
	}

	if err := f.db.Delete(&task).Error; err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := svc.Delete(ctx, f.actor.ID, team.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var count int64
	if err := f.db.Model(&model.Team{}).Where("id = ?", team.ID).Count(&count).Error; err != nil {
		t.Fatalf("count teams: %v", err)
	}
	if count != 0 {
		t.Fatal("team row should be gone")
	}
}

func TestGetTeamRosterBehindGrant(t *testing.T) {
	f := newFixture(t)
	// TEAMS_MEMBERS_VIEW deliberately not granted.
	for _, key := range []string{"TEAMS_VIEW", "TEAMS_ADD", "TEAMS_EDIT"} {
		f.grant(t, key, true)
	}
	svc := NewTeamService(f.db, repository.NewUserRepository(f.db), NewPermissionService(f.db))
	ctx := context.Background()

	team, err := svc.Create(ctx, f.actor.ID, CreateTeamRequest{Name: "Core", MaxMembers: 5})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	member := f.addUser(t, "member@acme.test", f.company.ID, f.role.ID)
	if err := svc.AddMember(ctx, f.actor.ID, team.ID, member.ID); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	got, err := svc.Get(ctx, f.actor.ID, team.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.MemberCount != 1 {
		t.Fatalf("expected member count 1, got %d", got.MemberCount)
	}
	if len(got.Members) != 0 {
		t.Fatalf("roster must be withheld without the grant, got %+v", got.Members)
	}
}
