// Package cmd holds the startup helpers shared by the editor binaries.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/louisbranch/warband-face/internal/platform/config"
	"github.com/louisbranch/warband-face/internal/platform/otel"
	"github.com/louisbranch/warband-face/internal/platform/timeouts"
	"go.uber.org/zap"
)

// Binary names, used as the otel service name and the cobra root command.
const (
	ServiceEditor   = "face-editor"
	ServiceFacecode = "facecode"
)

// ParseConfig loads WARBAND_FACE_* environment defaults into cfg. Flags
// parsed afterwards override them.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses service flags on top of the environment defaults.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry installs the tracer provider for service, runs the
// service until it returns, and then flushes pending spans. Spans started by
// the WebSocket transport are exported only while run is executing.
func RunWithTelemetry(ctx context.Context, service string, logger *zap.Logger, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("flush traces", zap.String("service", service), zap.Error(err))
		}
	}()
	return run(ctx)
}
