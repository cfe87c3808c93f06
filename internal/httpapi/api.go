// Package httpapi mounts the authentication and authorization pipeline in
// front of the business handlers. Every protected route passes, in order:
// admission control, payload sanitization, authentication, authorization.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"shivaccounts.org/internal/account"
	"shivaccounts.org/internal/admission"
	"shivaccounts.org/internal/config"
	"shivaccounts.org/internal/obs"
	"shivaccounts.org/internal/revocation"
	"shivaccounts.org/internal/session"
)

// ReadyProbe checks readiness, typically by pinging the account database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux      *http.ServeMux
	secret   []byte
	tokenTTL time.Duration
	debug    bool

	accounts account.Store
	resolver *session.Resolver
	revoked  revocation.Store
	limiters *admission.Limiters

	readyProbe ReadyProbe
	version    string
	now        func() time.Time
}

// New wires handlers onto the pipeline stages.
func New(cfg *config.Config, accounts account.Store, revoked revocation.Store, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		secret:     cfg.Secret,
		tokenTTL:   cfg.TokenTTL,
		debug:      cfg.Debug(),
		accounts:   accounts,
		resolver:   session.NewResolver(accounts),
		revoked:    revoked,
		limiters:   admission.NewLimiters(),
		readyProbe: rp,
		version:    version,
		now:        time.Now,
	}

	// health/ready/info and metrics stay outside the admission pipeline.
	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.Handle("GET /v1/info", a.optionalAuth(http.HandlerFunc(a.Info)))
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.Handle("POST /v1/auth/login",
		a.pipeline(a.limiters.Auth, http.HandlerFunc(a.handleLogin)))
	a.mux.Handle("POST /v1/auth/logout",
		a.pipeline(a.limiters.Sensitive, a.requireAuth(http.HandlerFunc(a.handleLogout))))
	a.mux.Handle("POST /v1/auth/password",
		a.pipeline(a.limiters.CredentialChange, a.requireAuth(http.HandlerFunc(a.handleChangePassword))))
	a.mux.Handle("GET /v1/auth/me",
		a.pipeline(a.limiters.General, a.requireAuth(http.HandlerFunc(a.handleMe))))
	a.mux.Handle("GET /v1/accounts/{id}",
		a.pipeline(a.limiters.General, a.requireAuth(
			a.requireSelfOrAdmin(ownerFromPath("id"), http.HandlerFunc(a.handleAccountGet)))))
	a.mux.Handle("GET /v1/admin/revocations",
		a.pipeline(a.limiters.Sensitive, a.requireAuth(
			a.requireRoles(account.NewRoleSet(account.RoleAdmin), http.HandlerFunc(a.handleRevocationStats)))))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// pipeline composes the ordered per-route stages: admission first, then body
// sanitization, then whatever authentication/authorization the route wraps
// itself in.
func (a *API) pipeline(limiter *admission.Limiter, next http.Handler) http.Handler {
	return a.withAdmission(limiter, a.withSanitizedBody(next))
}

// Handler returns the full middleware stack for the server.
func (a *API) Handler() http.Handler {
	h := http.Handler(a.mux)
	h = FloodGuard(h, 20, 40)
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = a.Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// Healthz reports liveness.
func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "shivaccounts-api",
		"version": a.version,
	})
}

// Ready reports readiness, pinging the account database when configured.
func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// Info returns service metadata. Authentication is optional here: an
// anonymous caller sees the public fields, an authenticated one also sees
// who they are.
func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"name":    "shivaccounts-api",
		"time":    a.now().UTC().Format(time.RFC3339),
		"version": a.version,
	}
	if sess, ok := session.FromContext(r.Context()); ok {
		body["account_id"] = sess.Account.ID
		body["role"] = string(sess.Account.Role)
	}
	writeJSON(w, http.StatusOK, body)
}
