package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("BASE_PATH", "")
	t.Setenv("AUTH_SIMULATED_LATENCY_MS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, StorageMemory)
	}
	if cfg.App.BasePath != "" {
		t.Errorf("App.BasePath = %q, want empty", cfg.App.BasePath)
	}
	if got := cfg.Auth.SimulatedLatency(); got != 500*time.Millisecond {
		t.Errorf("SimulatedLatency() = %v, want 500ms", got)
	}
	if cfg.Storage.MaxRetries != 5 {
		t.Errorf("Storage.MaxRetries = %d, want 5", cfg.Storage.MaxRetries)
	}
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want error for missing DSN")
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "etcd")

	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want error for unknown driver")
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"app", "/app"},
		{"/app/", "/app"},
		{" /hosted/demo ", "/hosted/demo"},
	}
	for _, tt := range tests {
		if got := NormalizeBasePath(tt.in); got != tt.want {
			t.Errorf("NormalizeBasePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAppConfig_RequestTimeout(t *testing.T) {
	if got := (AppConfig{RequestTimeoutSeconds: 0}).RequestTimeout(); got != 0 {
		t.Errorf("RequestTimeout() = %v, want 0", got)
	}
	if got := (AppConfig{RequestTimeoutSeconds: 3}).RequestTimeout(); got != 3*time.Second {
		t.Errorf("RequestTimeout() = %v, want 3s", got)
	}
}
