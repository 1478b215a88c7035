package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"auth-session-service/internal/platform/logging"
)

type mockPinger struct {
	pingErr error
}

func (m *mockPinger) PingContext(context.Context) error {
	return m.pingErr
}

type mockPolicyChecker struct {
	healthErr error
}

func (m *mockPolicyChecker) HealthCheck(context.Context) error {
	return m.healthErr
}

func TestChecker_Ready(t *testing.T) {
	boom := errors.New("connection refused")
	testCases := []struct {
		name    string
		pinger  Pinger
		policy  PolicyChecker
		wantErr bool
	}{
		{"no dependencies", nil, nil, false},
		{"healthy", &mockPinger{}, &mockPolicyChecker{}, false},
		{"db down", &mockPinger{pingErr: boom}, &mockPolicyChecker{}, true},
		{"policy broken", &mockPinger{}, &mockPolicyChecker{healthErr: boom}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewChecker(tc.pinger, tc.policy, logging.Discard())
			if err := c.Ready(context.Background()); (err != nil) != tc.wantErr {
				t.Fatalf("Ready err = %v, wantErr %v", err, tc.wantErr)
			}

			srv := NewGRPCServer(c)
			resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{})
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			want := healthpb.HealthCheckResponse_SERVING
			if tc.wantErr {
				want = healthpb.HealthCheckResponse_NOT_SERVING
			}
			if resp.GetStatus() != want {
				t.Errorf("status = %v, want %v", resp.GetStatus(), want)
			}

			rec := httptest.NewRecorder()
			Ready(c)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			wantCode := http.StatusOK
			if tc.wantErr {
				wantCode = http.StatusServiceUnavailable
			}
			if rec.Code != wantCode {
				t.Errorf("/readyz = %d, want %d", rec.Code, wantCode)
			}
		})
	}
}

func TestGRPCServer_UnknownService(t *testing.T) {
	srv := NewGRPCServer(NewChecker(nil, nil, nil))
	_, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "other"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", status.Code(err))
	}
}

func TestLive(t *testing.T) {
	rec := httptest.NewRecorder()
	Live(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
