package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"shivaccounts.org/internal/sanitize"
)

// withSanitizedBody strips control characters from every string leaf of a
// JSON request body before the handler decodes it. Non-JSON and empty bodies
// pass through untouched; a body that fails to parse is left as-is for the
// handler's decoder to reject.
func (a *API) withSanitizedBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.ContentLength == 0 || !isJSONRequest(r) {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			// MaxBytesReader or connection failure; surface as a bad request.
			a.writeError(w, r, badRequest("unreadable request body"))
			return
		}

		var payload any
		if json.Unmarshal(body, &payload) == nil {
			if cleaned, err := json.Marshal(sanitize.Value(payload)); err == nil {
				body = cleaned
			}
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

func isJSONRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.Contains(ct, "application/json")
}
