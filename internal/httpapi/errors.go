package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"shivaccounts.org/internal/obs"
	"shivaccounts.org/internal/session"
	"shivaccounts.org/internal/token"
)

// Machine-readable failure codes returned to clients.
const (
	CodeTokenMissing       = "TOKEN_MISSING"
	CodeTokenMalformed     = "TOKEN_MALFORMED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenNotYetActive  = "TOKEN_NOT_YET_ACTIVE"
	CodeTokenRevoked       = "TOKEN_REVOKED"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	CodeCredentialStale    = "CREDENTIAL_STALE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeForbidden          = "FORBIDDEN"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInternalError      = "INTERNAL_ERROR"
)

// apiError is a terminal request failure with a machine-readable code.
type apiError struct {
	status  int
	code    string
	message string
	context map[string]any
	cause   error
}

func (e *apiError) Error() string { return e.code + ": " + e.message }

func authFailure(code, message string) *apiError {
	return &apiError{status: http.StatusUnauthorized, code: code, message: message}
}

func forbidden(message string, context map[string]any) *apiError {
	return &apiError{status: http.StatusForbidden, code: CodeForbidden, message: message, context: context}
}

func badRequest(message string) *apiError {
	return &apiError{status: http.StatusBadRequest, code: CodeBadRequest, message: message}
}

func internalError(cause error) *apiError {
	return &apiError{
		status:  http.StatusInternalServerError,
		code:    CodeInternalError,
		message: "internal error",
		cause:   cause,
	}
}

// authErrorFor maps authentication-step failures onto the wire taxonomy.
// Signature failures surface as TOKEN_MALFORMED; the exact reason stays
// server-side.
func authErrorFor(err error) *apiError {
	switch {
	case errors.Is(err, token.ErrExpired):
		return authFailure(CodeTokenExpired, "token expired")
	case errors.Is(err, token.ErrNotYetValid):
		return authFailure(CodeTokenNotYetActive, "token not yet active")
	case errors.Is(err, token.ErrBadSignature), errors.Is(err, token.ErrMalformed):
		return authFailure(CodeTokenMalformed, "invalid token")
	case errors.Is(err, session.ErrAccountNotFound):
		return authFailure(CodeAccountNotFound, "account not found")
	case errors.Is(err, session.ErrAccountDeactivated):
		return authFailure(CodeAccountDeactivated, "account deactivated")
	case errors.Is(err, session.ErrCredentialStale):
		return authFailure(CodeCredentialStale, "token issued before last password change")
	default:
		return internalError(err)
	}
}

// writeError renders the failure contract:
// {"success":false,"message":...,"code":...,...context}. Internal errors log
// full detail server-side and stay generic client-side unless debug mode is
// on.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, e *apiError) {
	// auth_outcomes_total tracks authentication and authorization results
	// only; 4xx request errors, resource 404s and admission rejections have
	// their own signals.
	if e.status == http.StatusUnauthorized || e.status == http.StatusForbidden {
		obs.ObserveAuthOutcome(e.code)
	}

	body := map[string]any{
		"success": false,
		"message": e.message,
		"code":    e.code,
	}
	for k, v := range e.context {
		body[k] = v
	}
	if e.code == CodeInternalError {
		obs.LogError("request failed", e.cause, map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		if a.debug && e.cause != nil {
			body["detail"] = e.cause.Error()
		}
	}
	writeJSON(w, e.status, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
