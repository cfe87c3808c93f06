package account

import (
	"context"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{" Accountant ", RoleAccountant, true},
		{"CONTACT", RoleContact, true},
		{"superuser", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRoleSet(t *testing.T) {
	set := NewRoleSet(RoleAdmin, RoleAccountant)
	if !set.Contains(RoleAdmin) || !set.Contains(RoleAccountant) {
		t.Fatal("expected members missing")
	}
	if set.Contains(RoleContact) {
		t.Fatal("unexpected member")
	}
	names := set.Names()
	if len(names) != 2 || names[0] != "admin" || names[1] != "accountant" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestSanitizedStripsHash(t *testing.T) {
	a := &Account{ID: "acc-1", PasswordHash: "$2a$10$hash"}
	c := a.Sanitized()
	if c.PasswordHash != "" {
		t.Fatal("hash survived sanitization")
	}
	if a.PasswordHash == "" {
		t.Fatal("original mutated")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Find(ctx, "acc-1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Put(&Account{ID: "acc-1", Email: "Aman@Example.com", Role: RoleContact, IsActive: true}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	a, err := store.FindByEmail(ctx, "aman@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if a.ID != "acc-1" {
		t.Fatalf("unexpected account: %+v", a)
	}

	changed := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	if err := store.UpdatePassword(ctx, "acc-1", "newhash", changed); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	a, err = store.Find(ctx, "acc-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if a.PasswordHash != "newhash" || a.PasswordChangedAt == nil || !a.PasswordChangedAt.Equal(changed) {
		t.Fatalf("password update lost: %+v", a)
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
