package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"auth-session-service/internal/history"
	historyrepo "auth-session-service/internal/history/repository"
	"auth-session-service/internal/identity/service"
	"auth-session-service/internal/platform/logging"
	rolerepo "auth-session-service/internal/role/repository"
	"auth-session-service/internal/security"
	sessiondomain "auth-session-service/internal/session/domain"
	sessionrepo "auth-session-service/internal/session/repository"
	"auth-session-service/internal/server/interceptors"
	"auth-session-service/internal/user/domain"
	userrepo "auth-session-service/internal/user/repository"
)

type testEnv struct {
	router  http.Handler
	codec   *security.TokenCodec
	users   *userrepo.MemoryRepository
	history *history.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logging.Discard()
	hasher := security.NewHasher(bcrypt.MinCost)
	env := &testEnv{
		codec: security.NewTestTokenCodec(),
		users: userrepo.NewMemoryRepository(),
	}
	env.history = history.NewRecorder(historyrepo.NewMemoryRepository(), logger)
	svc := service.NewAuthService(env.users, rolerepo.NewMemoryRepository(), sessionrepo.NewMemoryRepository(),
		env.history, hasher, env.codec, time.Minute, time.Hour, service.WithLogger(logger))

	for _, u := range []struct {
		id, name string
		super    bool
	}{{"u1", "alice", false}, {"u2", "bob", false}, {"root", "root", true}} {
		hash, err := hasher.Hash("pw-" + u.name)
		if err != nil {
			t.Fatalf("Hash: %v", err)
		}
		if err := env.users.Create(context.Background(), &domain.User{
			ID: u.id, Username: u.name, PasswordHash: hash, IsActive: true, IsSuper: u.super,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	r := chi.NewRouter()
	r.Use(interceptors.Authenticate(env.codec))
	r.Mount("/users", NewUserHandler(env.users, env.history, svc, logger).Routes())
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body, asUser string, super bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if asUser != "" {
		token, err := e.codec.Encode(security.IdentityClaims(asUser, nil, super), time.Minute)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestUserHandler_Get(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/users/u1", "", "u2", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("user view leaks password data: %s", rec.Body.String())
	}
	var view domain.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if view.ID != "u1" || view.Username != "alice" || !view.Active {
		t.Errorf("view = %+v", view)
	}

	if rec := env.do(t, http.MethodGet, "/users/nope", "", "u2", false); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/users/u1", "", "", false); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}
}

func TestUserHandler_History(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, fp := range []string{"A", "B"} {
		if _, err := env.history.Append(ctx, "u1", sessiondomain.Device{Fingerprint: fp, UserAgent: "ua"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rec := env.do(t, http.MethodGet, "/users/u1/history", "", "u1", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 2 || entries[0]["fingerprint"] != "A" || entries[1]["fingerprint"] != "B" {
		t.Errorf("entries = %v", entries)
	}

	rec = env.do(t, http.MethodGet, "/users/u2/history", "", "u1", false)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty history = %d %q", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodGet, "/users/nope/history", "", "u1", false); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", rec.Code)
	}
}

func TestUserHandler_ChangePassword(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		name       string
		path       string
		body       string
		caller     string
		super      bool
		wantStatus int
	}{
		{"other user", "/users/u1/change_password", `{"old_password":"pw-alice","new_password":"x"}`, "u2", false, http.StatusForbidden},
		{"wrong old password", "/users/u1/change_password", `{"old_password":"bad","new_password":"x"}`, "u1", false, http.StatusNotFound},
		{"missing field", "/users/u1/change_password", `{"old_password":"pw-alice"}`, "u1", false, http.StatusBadRequest},
		{"malformed body", "/users/u1/change_password", `{`, "u1", false, http.StatusBadRequest},
		{"unknown user as super", "/users/nope/change_password", `{"old_password":"a","new_password":"b"}`, "root", true, http.StatusNotFound},
		{"new password too long", "/users/u1/change_password", `{"old_password":"pw-alice","new_password":"` + strings.Repeat("p", 73) + `"}`, "u1", false, http.StatusBadRequest},
		{"self", "/users/u1/change_password", `{"old_password":"pw-alice","new_password":"new-alice"}`, "u1", false, http.StatusCreated},
		{"super for another", "/users/u2/change_password", `{"old_password":"pw-bob","new_password":"new-bob"}`, "root", true, http.StatusCreated},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPatch, tc.path, tc.body, tc.caller, tc.super)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}

	u, _ := env.users.GetByID(context.Background(), "u1")
	if !security.NewHasher(bcrypt.MinCost).Verify(u.PasswordHash, "new-alice") {
		t.Error("password for u1 was not updated")
	}
}
