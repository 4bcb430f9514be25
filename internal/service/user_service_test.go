package service

import (
	"context"
	"errors"
	"testing"

	"taskhub/internal/model"
	"taskhub/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T, f *fixture) UserService {
	t.Helper()
	return NewUserService(
		f.db,
		repository.NewUserRepository(f.db),
		NewPermissionService(f.db),
		NewMenuService(f.db),
		NewCompanyService(f.db),
	)
}

func setPassword(t *testing.T, f *fixture, user *model.User, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := f.db.Model(user).Update("password_hash", string(hash)).Error; err != nil {
		t.Fatalf("set password: %v", err)
	}
	user.PasswordHash = string(hash)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(t, f)
	setPassword(t, f, &f.actor, "secret123")

	session, err := svc.Login(context.Background(), LoginRequest{Email: f.actor.Email, Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a signed token")
	}
	if session.User == nil || session.User.ID != f.actor.ID {
		t.Fatalf("unexpected session user: %+v", session.User)
	}
	if session.Company == nil || session.Company.ID != f.company.ID {
		t.Fatalf("unexpected session company: %+v", session.Company)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(t, f)
	setPassword(t, f, &f.actor, "secret123")
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Email: f.actor.Email, Password: "wrong"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("wrong password: expected ErrUnauthenticated, got %v", err)
	}

	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@acme.test", Password: "secret123"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("unknown email: expected ErrUnauthenticated, got %v", err)
	}

	f.deactivate(t, &f.actor)
	_, err = svc.Login(ctx, LoginRequest{Email: f.actor.Email, Password: "secret123"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("inactive user: expected ErrUnauthenticated, got %v", err)
	}
}

func TestLoginWithholdsTokenOnForcedReset(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(t, f)
	setPassword(t, f, &f.actor, "secret123")
	if err := f.db.Model(&f.actor).Update("must_change_password", true).Error; err != nil {
		t.Fatalf("set flag: %v", err)
	}

	session, err := svc.Login(context.Background(), LoginRequest{Email: f.actor.Email, Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !session.MustChangePassword {
		t.Fatal("expected must_change_password to be signalled")
	}
	if session.Token != "" {
		t.Fatal("token must be withheld until the password is changed")
	}
	if session.User != nil {
		t.Fatal("user payload must be withheld until the password is changed")
	}
}

func TestSignupBootstrapsTenant(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(t, f)
	ctx := context.Background()

	admin := model.Role{Name: "SuperAdmin", IsSystem: true}
	if err := f.db.Create(&admin).Error; err != nil {
		t.Fatalf("create role: %v", err)
	}

	session, err := svc.Signup(ctx, SignupRequest{
		Email:       "Founder@globex.test",
		Password:    "secret123",
		FirstName:   "Gerald",
		LastName:    "Founder",
		CompanyName: "Globex",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a signed token")
	}
	if session.User.Email != "founder@globex.test" {
		t.Fatalf("expected lowercased email, got %q", session.User.Email)
	}
	if session.User.RoleID != admin.ID {
		t.Fatalf("expected SuperAdmin role, got %s", session.User.RoleID)
	}
	if session.Company == nil || session.Company.Name != "Globex" {
		t.Fatalf("expected the new tenant, got %+v", session.Company)
	}
	if session.Company.Code == "" {
		t.Fatal("expected a generated company code")
	}

	var audits int64
	if err := f.db.Model(&model.AuditLog{}).
		Where("action = ?", model.ActionSuperAdminSignup).
		Count(&audits).Error; err != nil {
		t.Fatalf("count audits: %v", err)
	}
	if audits != 1 {
		t.Fatalf("expected 1 signup audit row, got %d", audits)
	}

	_, err = svc.Signup(ctx, SignupRequest{
		Email:       "founder@globex.test",
		Password:    "secret123",
		FirstName:   "Gerald",
		LastName:    "Founder",
		CompanyName: "Globex",
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("duplicate email: expected ErrInvalidArgument, got %v", err)
	}
}

func TestHasSuperAdmin(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(t, f)
	ctx := context.Background()

	admin := model.Role{Name: "SuperAdmin", IsSystem: true}
	if err := f.db.Create(&admin).Error; err != nil {
		t.Fatalf("create role: %v", err)
	}

	exists, err := svc.HasSuperAdmin(ctx, f.company.Code)
	if err != nil {
		t.Fatalf("HasSuperAdmin: %v", err)
	}
	if exists {
		t.Fatal("no admin account yet")
	}

	f.addUser(t, "admin@acme.test", f.company.ID, admin.ID)
	exists, err = svc.HasSuperAdmin(ctx, f.company.Code)
	if err != nil {
		t.Fatalf("HasSuperAdmin: %v", err)
	}
	if !exists {
		t.Fatal("expected the admin account to be detected")
	}

	_, err = svc.HasSuperAdmin(ctx, "NOP-2026-999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown code: expected ErrNotFound, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(t, f)
	setPassword(t, f, &f.actor, "secret123")
	if err := f.db.Model(&f.actor).Update("must_change_password", true).Error; err != nil {
		t.Fatalf("set flag: %v", err)
	}
	ctx := context.Background()

	err := svc.ChangePassword(ctx, f.actor.ID, ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "fresh456"})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("wrong current password: expected ErrUnauthenticated, got %v", err)
	}

	if err := svc.ChangePassword(ctx, f.actor.ID, ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "fresh456"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	session, err := svc.Login(ctx, LoginRequest{Email: f.actor.Email, Password: "fresh456"})
	if err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if session.MustChangePassword || session.Token == "" {
		t.Fatalf("expected cleared flag and a token, got %+v", session)
	}
}

func TestCreateUserIssuesTempPassword(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(t, f)
	f.grant(t, "USERS_CREATE", true)

	created, err := svc.CreateUser(context.Background(), f.actor.ID, CreateUserRequest{
		Email:     "New.Hire@acme.test",
		FirstName: "New",
		LastName:  "Hire",
		RoleID:    f.role.ID,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !created.MustChangePassword {
		t.Fatal("expected forced password change on first login")
	}
	if created.CompanyID != f.company.ID {
		t.Fatalf("new user must land in the actor's company, got %s", created.CompanyID)
	}

	var row model.User
	if err := f.db.First(&row, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte("Hire")); err != nil {
		t.Fatal("temporary password must be the last name")
	}
}

func TestDeleteUserGuards(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(t, f)
	f.grant(t, "USERS_DELETE", true)
	ctx := context.Background()

	err := svc.DeleteUser(ctx, f.actor.ID, f.actor.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("self-delete: expected ErrInvalidState, got %v", err)
	}

	other := model.Company{Name: "Rival", Code: "RIV-2026-001"}
	if err := f.db.Create(&other).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	outsider := f.addUser(t, "peer@rival.test", other.ID, f.role.ID)

	err = svc.DeleteUser(ctx, f.actor.ID, outsider.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign user: expected ErrNotFound, got %v", err)
	}

	target := f.addUser(t, "leaver@acme.test", f.company.ID, f.role.ID)
	if err := svc.DeleteUser(ctx, f.actor.ID, target.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
}

func TestListUsersScopedToCompany(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(t, f)
	f.grant(t, "USERS_VIEW", true)

	f.addUser(t, "one@acme.test", f.company.ID, f.role.ID)
	other := model.Company{Name: "Rival", Code: "RIV-2026-001"}
	if err := f.db.Create(&other).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	f.addUser(t, "two@rival.test", other.ID, f.role.ID)

	users, total, err := svc.ListUsers(context.Background(), f.actor.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Fatalf("expected the 2 company users, got total=%d len=%d", total, len(users))
	}
	for _, u := range users {
		if u.CompanyID != f.company.ID {
			t.Fatalf("user %s leaked from another company", u.Email)
		}
	}
}
