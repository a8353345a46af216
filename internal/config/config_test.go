package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("POS_API_BASE_URL", "http://pos.local/api")
	t.Setenv("STORE_DRIVER", "memory")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load("testdata-does-not-exist.env")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.POSAPI.Timeout != 10*time.Second {
		t.Errorf("POS timeout = %v, want 10s", cfg.POSAPI.Timeout)
	}
	if cfg.Store.Driver != StoreMemory {
		t.Errorf("Driver = %s, want memory", cfg.Store.Driver)
	}
	if cfg.Reporting.StaleShiftAfter != 16*time.Hour {
		t.Errorf("StaleShiftAfter = %v, want 16h", cfg.Reporting.StaleShiftAfter)
	}
	if len(cfg.Cash.Denominations) == 0 || cfg.Cash.Denominations[0] != 500000 {
		t.Errorf("unexpected default tender %v", cfg.Cash.Denominations)
	}
	if cfg.Redis.Enabled() || cfg.Sheets.Enabled() || cfg.WhatsApp.Enabled() {
		t.Error("optional integrations should be disabled by default")
	}
}

func TestLoadCustomDenominations(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CASH_DENOMINATIONS", "1, 100,5, 20")

	cfg, err := Load("testdata-does-not-exist.env")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []int64{100, 20, 5, 1}
	if len(cfg.Cash.Denominations) != len(want) {
		t.Fatalf("got %v, want %v", cfg.Cash.Denominations, want)
	}
	for i, d := range cfg.Cash.Denominations {
		if int64(d) != want[i] {
			t.Errorf("denomination %d = %d, want %d", i, d, want[i])
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing jwt secret", env: map[string]string{"JWT_SECRET": ""}, wantErr: "JWT_SECRET"},
		{name: "missing pos url", env: map[string]string{"POS_API_BASE_URL": ""}, wantErr: "POS_API_BASE_URL"},
		{name: "mongo without uri", env: map[string]string{"STORE_DRIVER": "mongo", "MONGODB_URI": ""}, wantErr: "MONGODB_URI"},
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "postgres"}, wantErr: "STORE_DRIVER"},
		{name: "bad timeout", env: map[string]string{"POS_API_TIMEOUT": "soon"}, wantErr: "POS_API_TIMEOUT"},
		{name: "zero stale threshold", env: map[string]string{"STALE_SHIFT_AFTER": "0s"}, wantErr: "STALE_SHIFT_AFTER"},
		{name: "negative stale threshold", env: map[string]string{"STALE_SHIFT_AFTER": "-1h"}, wantErr: "STALE_SHIFT_AFTER"},
		{name: "bad denominations", env: map[string]string{"CASH_DENOMINATIONS": "100,100"}, wantErr: "CASH_DENOMINATIONS"},
		{name: "sheets half configured", env: map[string]string{"GOOGLE_SHEET_LEDGER_ID": "abc"}, wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{name: "whatsapp without manager", env: map[string]string{"WHATSAPP_TOKEN": "t", "WHATSAPP_PHONE_NUMBER_ID": "1"}, wantErr: "WHATSAPP_MANAGER_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("testdata-does-not-exist.env")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}
