package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Debounce time.Duration `env:"WARBAND_FACE_TEST_DEBOUNCE" envDefault:"100ms"`
	Secret   string        `env:"WARBAND_FACE_TEST_SECRET"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Debounce != 100*time.Millisecond {
		t.Fatalf("expected default debounce 100ms, got %v", cfg.Debounce)
	}
	if cfg.Secret != "" {
		t.Fatalf("expected empty secret, got %q", cfg.Secret)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("WARBAND_FACE_TEST_DEBOUNCE", "soon")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvMapIgnoresProcessEnvironment(t *testing.T) {
	t.Setenv("WARBAND_FACE_TEST_SECRET", "from-process")

	var cfg envTestConfig
	if err := ParseEnvMap(&cfg, map[string]string{"WARBAND_FACE_TEST_DEBOUNCE": "250ms"}); err != nil {
		t.Fatalf("parse env map: %v", err)
	}
	if cfg.Debounce != 250*time.Millisecond {
		t.Fatalf("expected debounce 250ms, got %v", cfg.Debounce)
	}
	if cfg.Secret != "" {
		t.Fatalf("expected process secret to be ignored, got %q", cfg.Secret)
	}

	var defaults envTestConfig
	if err := ParseEnvMap(&defaults, nil); err != nil {
		t.Fatalf("parse nil env map: %v", err)
	}
	if defaults.Debounce != 100*time.Millisecond {
		t.Fatalf("expected default debounce, got %v", defaults.Debounce)
	}
}
