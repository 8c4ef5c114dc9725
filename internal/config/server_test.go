package config

import (
	"os"
	"reflect"
	"testing"
)

func TestLoadServerConfig_DefaultEnvironment(t *testing.T) {
	os.Unsetenv("ENV")
	cfg := LoadServerConfig()
	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected %q, got %q", EnvDevelopment, cfg.Environment)
	}
}

func TestLoadServerConfig_InvalidEnvironment(t *testing.T) {
	t.Setenv("ENV", "invalid")
	cfg := LoadServerConfig()
	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected %q for invalid ENV, got %q", EnvDevelopment, cfg.Environment)
	}
}

func TestLoadServerConfig_ValidEnvironments(t *testing.T) {
	tests := []struct {
		env  string
		want Environment
	}{
		{"development", EnvDevelopment},
		{"staging", EnvStaging},
		{"production", EnvProduction},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			cfg := LoadServerConfig()
			if cfg.Environment != tt.want {
				t.Errorf("expected %q, got %q", tt.want, cfg.Environment)
			}
		})
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	os.Unsetenv("LISTEN_ADDR")
	os.Unsetenv("RECONCILE_WORKERS")
	os.Unsetenv("FUZZY_MIN_SCORE")
	os.Unsetenv("COMPANY_DOMAINS")

	cfg := LoadServerConfig()
	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.ReconcileWorkers != 4 {
		t.Errorf("expected default 4 workers, got %d", cfg.ReconcileWorkers)
	}
	if cfg.FuzzyMinScore != 0 {
		t.Errorf("expected fuzzy min score 0, got %v", cfg.FuzzyMinScore)
	}
	if cfg.CompanyDomains != nil {
		t.Errorf("expected nil company domains, got %v", cfg.CompanyDomains)
	}
}

func TestLoadServerConfig_CompanyDomains(t *testing.T) {
	t.Setenv("COMPANY_DOMAINS", " Corp.com, eu.corp.com ,,")
	cfg := LoadServerConfig()
	want := []string{"corp.com", "eu.corp.com"}
	if !reflect.DeepEqual(cfg.CompanyDomains, want) {
		t.Errorf("expected %v, got %v", want, cfg.CompanyDomains)
	}
}

func TestLoadServerConfig_WorkersClamped(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want int
	}{
		{"negative", "-2", 4},
		{"zero", "0", 4},
		{"garbage", "many", 4},
		{"valid", "8", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RECONCILE_WORKERS", tt.val)
			cfg := LoadServerConfig()
			if cfg.ReconcileWorkers != tt.want {
				t.Errorf("expected %d workers, got %d", tt.want, cfg.ReconcileWorkers)
			}
		})
	}
}

func TestLoadServerConfig_FuzzyMinScoreClamped(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want float64
	}{
		{"below range", "-0.5", 0},
		{"above range", "1.5", 0},
		{"garbage", "high", 0},
		{"valid", "0.45", 0.45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FUZZY_MIN_SCORE", tt.val)
			cfg := LoadServerConfig()
			if cfg.FuzzyMinScore != tt.want {
				t.Errorf("expected fuzzy min score %v, got %v", tt.want, cfg.FuzzyMinScore)
			}
		})
	}
}

func TestLoadServerConfig_Schedule(t *testing.T) {
	t.Setenv("RECONCILE_SCHEDULE", "0 6 * * *")
	cfg := LoadServerConfig()
	if cfg.ReconcileSchedule != "0 6 * * *" {
		t.Errorf("expected schedule to pass through, got %q", cfg.ReconcileSchedule)
	}
}
