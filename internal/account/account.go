// Package account defines the user account model shared by the
// authentication core and the backing stores.
package account

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("account: not found")
	ErrAlreadyExists = errors.New("account: already exists")
)

// Role is the coarse access level attached to every account.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleContact    Role = "contact"
)

// ParseRole normalizes a stored role string into a known Role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleAccountant:
		return RoleAccountant, true
	case RoleContact:
		return RoleContact, true
	}
	return "", false
}

// RoleSet is an allowed-role set declared per route.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports set membership.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Names returns the roles as sorted-insertion strings for error responses.
func (s RoleSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, r := range []Role{RoleAdmin, RoleAccountant, RoleContact} {
		if s.Contains(r) {
			names = append(names, string(r))
		}
	}
	return names
}

// Account is the persisted user record. PasswordHash never serializes and is
// cleared before the account is attached to a request.
type Account struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name,omitempty"`
	Role              Role       `json:"role"`
	IsActive          bool       `json:"is_active"`
	PasswordHash      string     `json:"-"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Sanitized returns a copy safe to hand to request handlers: the password
// hash is stripped.
func (a *Account) Sanitized() *Account {
	c := *a
	c.PasswordHash = ""
	return &c
}

// Store is the point-lookup interface onto the external account store. The
// core never mutates accounts except through UpdatePassword.
type Store interface {
	Find(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
}
