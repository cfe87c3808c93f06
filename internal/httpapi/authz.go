package httpapi

import (
	"net/http"

	"shivaccounts.org/internal/account"
	"shivaccounts.org/internal/session"
)

// requireRoles rejects with FORBIDDEN when the resolved account's role is
// outside the allowed set, and with UNAUTHENTICATED when no account was
// resolved at all. The failure body echoes the required set and the actual
// role; never the token.
func (a *API) requireRoles(allowed account.RoleSet, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			a.writeError(w, r, authFailure(CodeUnauthenticated, "authentication required"))
			return
		}
		if !allowed.Contains(sess.Account.Role) {
			a.writeError(w, r, forbidden("insufficient role", map[string]any{
				"required_roles": allowed.Names(),
				"actual_role":    string(sess.Account.Role),
			}))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSelfOrAdmin admits the resource owner and admins.
func (a *API) requireSelfOrAdmin(owner func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			a.writeError(w, r, authFailure(CodeUnauthenticated, "authentication required"))
			return
		}
		ownerID := owner(r)
		if sess.Account.ID == ownerID || sess.Account.Role == account.RoleAdmin {
			next.ServeHTTP(w, r)
			return
		}
		a.writeError(w, r, forbidden("not the resource owner", map[string]any{
			"required_roles": []string{string(account.RoleAdmin)},
			"actual_role":    string(sess.Account.Role),
		}))
	})
}

// ownerFromPath reads the resource owner id out of a path parameter.
func ownerFromPath(param string) func(*http.Request) string {
	return func(r *http.Request) string {
		return r.PathValue(param)
	}
}
