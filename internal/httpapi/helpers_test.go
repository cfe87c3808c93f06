package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"shivaccounts.org/internal/account"
	"shivaccounts.org/internal/config"
	"shivaccounts.org/internal/revocation"
	"shivaccounts.org/internal/token"
)

var testSecret = []byte("unit-test-secret-0123456789abcdef")

// plainHash is bcrypt("letmein-123"), computed once because hashing per test
// is slow.
var plainHash string

func init() {
	h, err := account.HashPassword("letmein-123")
	if err != nil {
		panic(err)
	}
	plainHash = h
}

type testEnv struct {
	api   *API
	store *account.MemoryStore
	reg   *revocation.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Secret:   testSecret,
		Mode:     config.ModeProduction,
		TokenTTL: time.Hour,
	}
	store := account.NewMemoryStore()
	reg := revocation.NewMemory(0)
	api := New(cfg, store, reg, ReadyProbe{}, "test")
	return &testEnv{api: api, store: store, reg: reg}
}

func (e *testEnv) seed(t *testing.T, id string, role account.Role, active bool) *account.Account {
	t.Helper()
	a := &account.Account{
		ID:           id,
		Email:        id + "@example.com",
		Role:         role,
		IsActive:     active,
		PasswordHash: plainHash,
		CreatedAt:    time.Now().UTC().Add(-time.Hour),
	}
	if err := e.store.Put(a); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	return a
}

func (e *testEnv) issueToken(t *testing.T, id string, role account.Role, issuedAt time.Time) string {
	t.Helper()
	raw, _, err := token.Issue(id, string(role), testSecret, time.Hour, issuedAt)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw
}

// do runs a request through the routed mux (per-route pipeline included,
// outer middleware stack excluded).
func (e *testEnv) do(t *testing.T, method, target, bearer, clientIP string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if clientIP != "" {
		req.Header.Set("X-Forwarded-For", clientIP)
	}
	rec := httptest.NewRecorder()
	e.api.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func wantFailure(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) map[string]any {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, status, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Fatalf("success = %v, want false", body["success"])
	}
	if body["code"] != code {
		t.Fatalf("code = %v, want %s", body["code"], code)
	}
	if _, ok := body["message"].(string); !ok {
		t.Fatalf("message missing: %v", body)
	}
	return body
}
