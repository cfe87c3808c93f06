package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"shivaccounts.org/internal/admission"
	"shivaccounts.org/internal/obs"
)

// withAdmission enforces a limiter's window for the client. When the limiter
// only counts failures, the decision is finalized after the downstream
// handler completes: a non-error outcome uncounts the attempt.
func (a *API) withAdmission(l *admission.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		d := l.Admit(key)
		if !d.OK {
			obs.ObserveRateLimited(l.Name())
			retryAfter := int((d.RetryAfter + time.Second - 1) / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			a.writeError(w, r, &apiError{
				status:  http.StatusTooManyRequests,
				code:    CodeRateLimited,
				message: "too many attempts, slow down",
				context: map[string]any{"retry_after_seconds": retryAfter},
			})
			return
		}

		if l.Config().CountSuccesses {
			next.ServeHTTP(w, r)
			return
		}

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		if sw.code < http.StatusBadRequest {
			l.Forgive(key)
		}
	})
}
