package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shivaccounts.org/internal/account"
	"shivaccounts.org/internal/token"
)

func claimsFor(subject string, issuedAt time.Time) *token.Claims {
	return &token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
}

func storeWith(t *testing.T, accounts ...*account.Account) *account.MemoryStore {
	t.Helper()
	store := account.NewMemoryStore()
	for _, a := range accounts {
		require.NoError(t, store.Put(a))
	}
	return store
}

func TestResolveSuccess(t *testing.T) {
	store := storeWith(t, &account.Account{
		ID:           "acc-1",
		Email:        "kiran@example.com",
		Role:         account.RoleAccountant,
		IsActive:     true,
		PasswordHash: "$2a$10$hash",
	})
	r := NewResolver(store)

	sess, err := r.Resolve(context.Background(), claimsFor("acc-1", time.Now()), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", sess.Account.ID)
	assert.Equal(t, "raw-token", sess.Token)
	assert.Empty(t, sess.Account.PasswordHash, "hash must not leak into the session")
}

func TestResolveAccountNotFound(t *testing.T) {
	r := NewResolver(storeWith(t))
	_, err := r.Resolve(context.Background(), claimsFor("ghost", time.Now()), "raw")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestResolveAccountDeactivated(t *testing.T) {
	store := storeWith(t, &account.Account{ID: "acc-1", Role: account.RoleContact, IsActive: false})
	r := NewResolver(store)
	_, err := r.Resolve(context.Background(), claimsFor("acc-1", time.Now()), "raw")
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestResolveCredentialStaleness(t *testing.T) {
	// Stored timestamp carries sub-second precision the token iat cannot.
	changed := time.Date(2026, 3, 1, 12, 0, 0, 450_000_000, time.UTC)
	store := storeWith(t, &account.Account{
		ID:                "acc-1",
		Role:              account.RoleAdmin,
		IsActive:          true,
		PasswordChangedAt: &changed,
	})
	r := NewResolver(store)

	cases := []struct {
		name     string
		issuedAt time.Time
		wantErr  error
	}{
		{"issued before change", changed.Add(-time.Hour), ErrCredentialStale},
		{"issued same second as change", changed.Truncate(time.Second), ErrCredentialStale},
		{"issued next second", changed.Truncate(time.Second).Add(time.Second), nil},
		{"issued well after change", changed.Add(time.Hour), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), claimsFor("acc-1", tc.issuedAt), "raw")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	sess := &Session{Account: &account.Account{ID: "acc-1"}, Token: "raw"}
	ctx = ContextWith(ctx, sess)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "acc-1", got.Account.ID)

	assert.Equal(t, ctx, ContextWith(ctx, nil))
}
