// Package session maps verified token claims to a live account record.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shivaccounts.org/internal/account"
	"shivaccounts.org/internal/token"
)

var (
	// ErrAccountNotFound indicates the token subject has no account record.
	ErrAccountNotFound = errors.New("session: account not found")
	// ErrAccountDeactivated indicates the account exists but is disabled.
	ErrAccountDeactivated = errors.New("session: account deactivated")
	// ErrCredentialStale indicates the token predates the account's last
	// password change.
	ErrCredentialStale = errors.New("session: token issued before password change")
)

// Session is a resolved account paired with the raw token that produced it,
// kept so logout can revoke exactly that token.
type Session struct {
	Account *account.Account
	Token   string
}

// Resolver turns verified claims into sessions. The account lookup is the
// only blocking I/O in the authentication path.
type Resolver struct {
	accounts account.Store
}

// NewResolver wires the resolver to an account store.
func NewResolver(accounts account.Store) *Resolver {
	return &Resolver{accounts: accounts}
}

// Resolve fetches the account behind the claims and checks the account-level
// invariants. The returned session carries a sanitized copy of the account.
func (r *Resolver) Resolve(ctx context.Context, claims *token.Claims, raw string) (*Session, error) {
	acct, err := r.accounts.Find(ctx, claims.Subject)
	if errors.Is(err, account.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: account lookup: %w", err)
	}
	if !acct.IsActive {
		return nil, ErrAccountDeactivated
	}
	if acct.PasswordChangedAt != nil {
		// Stored timestamps may carry sub-second precision the token's
		// epoch-second iat cannot; floor before comparing.
		changedAt := acct.PasswordChangedAt.Truncate(time.Second)
		if !claims.IssuedAt.Time.After(changedAt) {
			return nil, ErrCredentialStale
		}
	}
	return &Session{Account: acct.Sanitized(), Token: raw}, nil
}
