// Package editor parses face editor command flags and composes the server.
package editor

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/warband-face/internal/platform/cmd"
	"github.com/louisbranch/warband-face/internal/platform/logging"
	server "github.com/louisbranch/warband-face/internal/services/editor/app"
	"github.com/louisbranch/warband-face/internal/services/editor/syncengine"
	"go.uber.org/zap"
)

// Config holds editor command configuration.
type Config struct {
	HTTPAddr      string        `env:"WARBAND_FACE_EDITOR_HTTP_ADDR"      envDefault:":8090"`
	DBPath        string        `env:"WARBAND_FACE_EDITOR_DB_PATH"        envDefault:"data/faces.db"`
	Debounce      time.Duration `env:"WARBAND_FACE_EDITOR_DEBOUNCE"       envDefault:"100ms"`
	SessionSecret string        `env:"WARBAND_FACE_EDITOR_SESSION_SECRET"`
	MaxSessions   int           `env:"WARBAND_FACE_EDITOR_MAX_SESSIONS"   envDefault:"256"`
	LogLevel      string        `env:"WARBAND_FACE_EDITOR_LOG_LEVEL"      envDefault:"info"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "editor HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "saved faces SQLite path; empty disables character storage")
	fs.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "quiet period before a face code is regenerated")
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "HS256 secret for session tokens; empty disables auth")
	fs.IntVar(&cfg.MaxSessions, "max-sessions", cfg.MaxSessions, "concurrent editing sessions; 0 is unlimited")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Debounce <= 0 {
		return Config{}, fmt.Errorf("debounce must be positive, got %s", cfg.Debounce)
	}
	if cfg.MaxSessions < 0 {
		return Config{}, fmt.Errorf("max sessions must not be negative, got %d", cfg.MaxSessions)
	}
	return cfg, nil
}

// Run builds the editor server and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	syncengine.SetLogger(logger.Named("syncengine"))

	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEditor, logger, func(ctx context.Context) error {
		logger.Info("starting face editor",
			zap.String("http_addr", cfg.HTTPAddr),
			zap.Duration("debounce", cfg.Debounce),
			zap.Bool("auth", cfg.SessionSecret != ""),
		)
		if err := server.Run(ctx, server.Config{
			HTTPAddr:      cfg.HTTPAddr,
			DBPath:        cfg.DBPath,
			Debounce:      cfg.Debounce,
			SessionSecret: cfg.SessionSecret,
			MaxSessions:   cfg.MaxSessions,
			Logger:        logger.Named("server"),
		}); err != nil {
			return fmt.Errorf("serve editor: %w", err)
		}
		return nil
	})
}
