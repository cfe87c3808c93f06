package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"shivaccounts.org/internal/obs"
)

// auth_outcomes_total must only move for authentication and authorization
// failures, not for request errors, resource 404s or internal faults.
func TestAuthOutcomeMetricScopedToAuthFailures(t *testing.T) {
	env := newTestEnv(t)

	count := func(code string) float64 {
		return testutil.ToFloat64(obs.AuthOutcomeCounter(code))
	}

	cases := []struct {
		name    string
		err     *apiError
		counted bool
	}{
		{"bad request", badRequest("invalid JSON body"), false},
		{"resource not found", &apiError{
			status:  http.StatusNotFound,
			code:    CodeAccountNotFound,
			message: "account not found",
		}, false},
		{"internal error", internalError(errors.New("boom")), false},
		{"unauthenticated", authFailure(CodeUnauthenticated, "authentication required"), true},
		{"revoked", authFailure(CodeTokenRevoked, "token revoked"), true},
		{"forbidden", forbidden("insufficient role", nil), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := count(tc.err.code)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/x", nil)
			env.api.writeError(rec, req, tc.err)

			got := count(tc.err.code) - before
			want := 0.0
			if tc.counted {
				want = 1
			}
			if got != want {
				t.Fatalf("auth outcome delta for %s = %v, want %v", tc.err.code, got, want)
			}
			if rec.Code != tc.err.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.err.status)
			}
		})
	}
}
