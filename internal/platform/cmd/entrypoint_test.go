package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
	"time"

	"go.uber.org/zap"
)

type testConfig struct {
	HTTPAddr string        `env:"WARBAND_FACE_CMD_TEST_ADDR" envDefault:"127.0.0.1:8090"`
	Debounce time.Duration `env:"WARBAND_FACE_CMD_TEST_DEBOUNCE" envDefault:"100ms"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("WARBAND_FACE_CMD_TEST_ADDR", "env:9000")
	t.Setenv("WARBAND_FACE_CMD_TEST_DEBOUNCE", "250ms")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "address")
	fs.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "debounce")

	if err := ParseArgs(fs, []string{"-http-addr", "flag:9001"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.HTTPAddr != "flag:9001" {
		t.Fatalf("expected flag value for address, got %q", cfg.HTTPAddr)
	}
	if cfg.Debounce != 250*time.Millisecond {
		t.Fatalf("expected env debounce, got %v", cfg.Debounce)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", nil, func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceEditor, nil, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("WARBAND_FACE_OTEL_ENDPOINT", "")

	want := errors.New("listen failed")
	err := RunWithTelemetry(context.Background(), ServiceEditor, zap.NewNop(), func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("RunWithTelemetry error = %v, want %v", err, want)
	}
}
