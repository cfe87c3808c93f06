package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"shivaccounts.org/internal/account"
	"shivaccounts.org/internal/audit"
	"shivaccounts.org/internal/obs"
	"shivaccounts.org/internal/session"
	"shivaccounts.org/internal/token"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool             `json:"success"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Account   *account.Account `json:"account"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, badRequest(err.Error()))
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		a.writeError(w, r, badRequest("email and password are required"))
		return
	}

	acct, err := a.accounts.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, account.ErrNotFound) {
		a.writeError(w, r, authFailure(CodeUnauthenticated, "invalid email or password"))
		return
	}
	if err != nil {
		a.writeError(w, r, internalError(err))
		return
	}
	if err := account.VerifyPassword(acct.PasswordHash, req.Password); err != nil {
		a.writeError(w, r, authFailure(CodeUnauthenticated, "invalid email or password"))
		return
	}
	if !acct.IsActive {
		a.writeError(w, r, authFailure(CodeAccountDeactivated, "account deactivated"))
		return
	}

	signed, expiresAt, err := token.Issue(acct.ID, string(acct.Role), a.secret, a.tokenTTL, a.now())
	if err != nil {
		a.writeError(w, r, internalError(err))
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"account_id": acct.ID,
		"role":       string(acct.Role),
		"expires_at": expiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		Token:     signed,
		ExpiresAt: expiresAt,
		Account:   acct.Sanitized(),
	})
}

// handleLogout adds the caller's resolved token to the revocation registry.
// The response is a normal completion either way; revocation has no other
// effect on the caller.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		a.writeError(w, r, authFailure(CodeUnauthenticated, "authentication required"))
		return
	}

	a.revoked.Add(sess.Token)
	obs.SetRevocationSize(a.revoked.Len())

	_ = audit.LogEvent(r.Context(), "auth.logout", map[string]any{
		"account_id": sess.Account.ID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "logged out",
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		a.writeError(w, r, authFailure(CodeUnauthenticated, "authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"account": sess.Account,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		a.writeError(w, r, authFailure(CodeUnauthenticated, "authentication required"))
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, badRequest(err.Error()))
		return
	}
	if len(req.NewPassword) < 8 {
		a.writeError(w, r, badRequest("new password must be at least 8 characters"))
		return
	}

	// The session carries a sanitized account; fetch the stored record to
	// check the current password.
	acct, err := a.accounts.Find(r.Context(), sess.Account.ID)
	if err != nil {
		a.writeError(w, r, internalError(err))
		return
	}
	if err := account.VerifyPassword(acct.PasswordHash, req.CurrentPassword); err != nil {
		a.writeError(w, r, authFailure(CodeUnauthenticated, "current password is incorrect"))
		return
	}

	hash, err := account.HashPassword(req.NewPassword)
	if err != nil {
		a.writeError(w, r, internalError(err))
		return
	}
	if err := a.accounts.UpdatePassword(r.Context(), acct.ID, hash, a.now()); err != nil {
		a.writeError(w, r, internalError(err))
		return
	}

	// Tokens issued before this change are now stale; retire the caller's
	// own token immediately as well.
	a.revoked.Add(sess.Token)
	obs.SetRevocationSize(a.revoked.Len())

	_ = audit.LogEvent(r.Context(), "auth.password_changed", map[string]any{
		"account_id": acct.ID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "password changed, please log in again",
	})
}

// handleRevocationStats exposes registry occupancy to operators.
func (a *API) handleRevocationStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"entries": a.revoked.Len(),
	})
}

func (a *API) handleAccountGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	acct, err := a.accounts.Find(r.Context(), id)
	if errors.Is(err, account.ErrNotFound) {
		a.writeError(w, r, &apiError{
			status:  http.StatusNotFound,
			code:    CodeAccountNotFound,
			message: "account not found",
		})
		return
	}
	if err != nil {
		a.writeError(w, r, internalError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"account": acct.Sanitized(),
	})
}
