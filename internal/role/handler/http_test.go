package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"auth-session-service/internal/platform/logging"
	"auth-session-service/internal/role/domain"
	rolerepo "auth-session-service/internal/role/repository"
	userdomain "auth-session-service/internal/user/domain"
	userrepo "auth-session-service/internal/user/repository"
)

type testEnv struct {
	router http.Handler
	roles  *rolerepo.MemoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	users := userrepo.NewMemoryRepository()
	for _, u := range []struct{ id, name string }{{"u1", "alice"}, {"u2", "bob"}, {"u3", "carol"}} {
		if err := users.Create(ctx, &userdomain.User{ID: u.id, Username: u.name, PasswordHash: "x", IsActive: true}); err != nil {
			t.Fatalf("Create user: %v", err)
		}
	}
	roles := rolerepo.NewMemoryRepository()
	for _, r := range []struct{ id, name string }{{"r1", "admin"}, {"r2", "editor"}} {
		if err := roles.Create(ctx, &domain.Role{ID: r.id, Name: r.name}); err != nil {
			t.Fatalf("Create role: %v", err)
		}
	}
	if err := roles.SetMembers(ctx, "r2", []string{"u1"}, time.Unix(1_700_000_000, 0)); err != nil {
		t.Fatalf("SetMembers: %v", err)
	}
	return &testEnv{
		router: NewRoleHandler(roles, users, logging.Discard()).Routes(),
		roles:  roles,
	}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestRoleHandler_ListAndGet(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var views []View
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(views) != 2 || views[0].Name != "admin" || views[1].Name != "editor" {
		t.Fatalf("views = %+v", views)
	}
	if len(views[1].Users) != 1 || views[1].Users[0].Username != "alice" {
		t.Errorf("editor users = %+v", views[1].Users)
	}

	if rec := env.do(http.MethodGet, "/r2", ""); rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get unknown status = %d, want 404", rec.Code)
	}
}

func TestRoleHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	testCases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"new role", `{"name":"viewer"}`, http.StatusCreated},
		{"duplicate", `{"name":"admin"}`, http.StatusBadRequest},
		{"blank name", `{"name":"  "}`, http.StatusBadRequest},
		{"missing name", `{}`, http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := env.do(http.MethodPost, "/", tc.body); rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}
	if r, _ := env.roles.GetByName(context.Background(), "viewer"); r == nil {
		t.Error("viewer role was not stored")
	}
}

func TestRoleHandler_Rename(t *testing.T) {
	env := newTestEnv(t)
	testCases := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"taken name", "/r2", `{"name":"admin"}`, http.StatusBadRequest},
		{"unknown role", "/missing", `{"name":"x"}`, http.StatusNotFound},
		{"rename", "/r2", `{"name":"writer"}`, http.StatusOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := env.do(http.MethodPatch, tc.path, tc.body); rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}
	if r, _ := env.roles.GetByID(context.Background(), "r2"); r == nil || r.Name != "writer" {
		t.Errorf("role r2 = %+v, want name writer", r)
	}
}

func TestRoleHandler_Members(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPatch, "/r2/users", `{"added_users":["bob","carol","ghost"],"deleted_users":["alice","carol"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var v View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(v.Users) != 1 || v.Users[0].Username != "bob" {
		t.Errorf("members = %+v, want [bob]", v.Users)
	}
	names, _ := env.roles.NamesByUser(context.Background(), "u2")
	if len(names) != 1 || names[0] != "editor" {
		t.Errorf("NamesByUser(u2) = %v", names)
	}

	if rec := env.do(http.MethodPatch, "/missing/users", `{}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown role status = %d, want 404", rec.Code)
	}
}
