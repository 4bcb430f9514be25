package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"taskhub/internal/model"
)

func TestCodePrefix(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Acme Corp", "ACM"},
		{"acme", "ACM"},
		{"3M Company", "MCO"},
		{"A B", "ABX"},
		{"X", "XXX"},
		{"", "XXX"},
		{"42", "XXX"},
		{"Ångström Labs", "ÅNG"},
	}
	for _, tc := range cases {
		if got := codePrefix(tc.name); got != tc.want {
			t.Errorf("codePrefix(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestGenerateCompanyCodeSequence(t *testing.T) {
	db := newTestDB(t)
	svc := NewCompanyService(db)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	first, err := svc.Create(ctx, CreateCompanyRequest{Name: "Globex"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if want := fmt.Sprintf("GLO-%d-001", year); first.Code != want {
		t.Fatalf("first code = %q, want %q", first.Code, want)
	}

	second, err := svc.Create(ctx, CreateCompanyRequest{Name: "Global Parts"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if want := fmt.Sprintf("GLO-%d-002", year); second.Code != want {
		t.Fatalf("second code = %q, want %q", second.Code, want)
	}

	other, err := svc.Create(ctx, CreateCompanyRequest{Name: "Initech"})
	if err != nil {
		t.Fatalf("create third: %v", err)
	}
	if want := fmt.Sprintf("INI-%d-001", year); other.Code != want {
		t.Fatalf("different prefix restarts the sequence, got %q want %q", other.Code, want)
	}
}

func TestCreateCompanyBlankName(t *testing.T) {
	db := newTestDB(t)
	svc := NewCompanyService(db)

	_, err := svc.Create(context.Background(), CreateCompanyRequest{Name: "   "})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestGetByCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewCompanyService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCompanyRequest{Name: "Globex"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := svc.GetByCode(ctx, created.Code)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected company %s, got %s", created.ID, found.ID)
	}

	_, err = svc.GetByCode(ctx, "NOP-2026-999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindOrCreateByNameIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewCompanyService(db)
	ctx := context.Background()

	first, err := svc.FindOrCreateByName(ctx, "Globex")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.FindOrCreateByName(ctx, "Globex")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same company back, got %s and %s", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&model.Company{}).Count(&count).Error; err != nil {
		t.Fatalf("count companies: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 company row, got %d", count)
	}
}

func TestCompanyProfileScopedToActor(t *testing.T) {
	f := newFixture(t)
	svc := NewCompanyService(f.db)
	ctx := context.Background()

	profile, err := svc.Profile(ctx, f.actor.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.ID != f.company.ID {
		t.Fatalf("expected actor's company %s, got %s", f.company.ID, profile.ID)
	}

	updated, err := svc.UpdateProfile(ctx, f.actor.ID, UpdateCompanyRequest{Name: "Acme Reborn"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Acme Reborn" {
		t.Fatalf("expected renamed company, got %q", updated.Name)
	}
	if updated.Code != f.company.Code {
		t.Fatalf("rename must not touch the code, got %q", updated.Code)
	}
}
