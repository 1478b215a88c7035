package config

import (
	"os"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("SECRET_KEY", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8000")
	}
	if cfg.GRPCAddr != "" {
		t.Errorf("GRPCAddr = %q, want empty", cfg.GRPCAddr)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 7*24*time.Hour {
		t.Errorf("RefreshTTL = %v, want 168h", cfg.RefreshTTL())
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.AdminRole != "admin" {
		t.Errorf("AdminRole = %q, want admin", cfg.AdminRole)
	}
	if cfg.HistoryKafkaTopic != "auth-login-history" {
		t.Errorf("HistoryKafkaTopic = %q, want default", cfg.HistoryKafkaTopic)
	}
	if cfg.ServiceName != "auth-session-service" {
		t.Errorf("ServiceName = %q, want default", cfg.ServiceName)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("SECRET_KEY", testSecret)
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("ACCESS_TOKEN_EXPIRATION", "60")
	os.Setenv("REFRESH_TOKEN_EXPIRATION", "3600")
	os.Setenv("BCRYPT_COST", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.AccessTTL() != time.Minute {
		t.Errorf("AccessTTL = %v, want 1m", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != time.Hour {
		t.Errorf("RefreshTTL = %v, want 1h", cfg.RefreshTTL())
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"short secret", map[string]string{"SECRET_KEY": "short"}},
		{"zero access ttl", map[string]string{"SECRET_KEY": testSecret, "ACCESS_TOKEN_EXPIRATION": "0"}},
		{"negative refresh ttl", map[string]string{"SECRET_KEY": testSecret, "REFRESH_TOKEN_EXPIRATION": "-5"}},
		{"bcrypt cost too high", map[string]string{"SECRET_KEY": testSecret, "BCRYPT_COST": "40"}},
		{"production without database", map[string]string{"SECRET_KEY": testSecret, "APP_ENV": "production"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tc.env {
				os.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load: want error, got nil")
			}
		})
	}
}

func TestKafkaBrokersList(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "localhost:9092", []string{"localhost:9092"}},
		{"multiple with spaces", " a:1 , b:2 ,, ", []string{"a:1", "b:2"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{KafkaBrokers: tc.in}
			got := cfg.KafkaBrokersList()
			if len(got) != len(tc.want) {
				t.Fatalf("KafkaBrokersList() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("KafkaBrokersList()[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
	var nilCfg *Config
	if nilCfg.KafkaBrokersList() != nil {
		t.Error("nil config should return nil brokers")
	}
}
