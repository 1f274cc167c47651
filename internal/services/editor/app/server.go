// Package server hosts the face editor's HTTP API and live editing WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/warband-face/internal/platform/telemetry/metrics"
	"github.com/louisbranch/warband-face/internal/platform/timeouts"
	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
	"github.com/louisbranch/warband-face/internal/services/editor/storage"
	"github.com/louisbranch/warband-face/internal/services/editor/storage/sqlite"
	"github.com/louisbranch/warband-face/internal/services/editor/syncengine"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Routes served by the editor.
const (
	routeUp          = "/up"
	routeMetrics     = "/metrics"
	routeFaceUpdates = "/api/v1/ws/face-updates"
	routeDecode      = "/api/v1/face/decode"
	routeEncode      = "/api/v1/face/encode"
	routeValidate    = "/api/v1/face/validate/{code}"
	routeLayout      = "/api/v1/face/layout"
	routeCharacters  = "/api/v1/characters"
	routeCharacter   = "/api/v1/characters/{name}/face"
)

// Config defines the inputs for the editor process.
type Config struct {
	HTTPAddr string
	// DBPath locates the saved faces database; empty disables character
	// storage.
	DBPath        string
	Debounce      time.Duration
	SessionSecret string
	MaxSessions   int

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	Logger *zap.Logger
}

// HandlerOptions wires the dependencies behind the editor routes.
type HandlerOptions struct {
	// Hub owns the live sessions. Nil creates one over the canonical layout.
	Hub *syncengine.Hub
	// Faces backs the character routes; nil makes them answer 503.
	Faces storage.FaceStore
	// Authorizer gates the WebSocket and character writes; nil disables auth.
	Authorizer SessionAuthorizer
	Metrics    *metrics.Editor
	Logger     *zap.Logger
}

type handler struct {
	hub        *syncengine.Hub
	codec      *facecode.Codec
	faces      storage.FaceStore
	authorizer SessionAuthorizer
	metrics    *metrics.Editor
	logger     *zap.Logger
}

// Server hosts the editor HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	hub             *syncengine.Hub
	store           *sqlite.Store
	logger          *zap.Logger
}

// NewHandler builds the editor routes.
func NewHandler(opts HandlerOptions) http.Handler {
	h := &handler{
		hub:        opts.Hub,
		faces:      opts.Faces,
		authorizer: opts.Authorizer,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if h.hub == nil {
		h.hub = syncengine.NewHub(facecode.NewCodec(facecode.V1), syncengine.HubOptions{})
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	h.codec = h.hub.Codec()

	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+routeUp, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if h.metrics != nil {
		mux.Handle(http.MethodGet+" "+routeMetrics, h.metrics.Handler())
	}
	mux.HandleFunc(routeFaceUpdates, h.handleFaceUpdates)

	mux.HandleFunc(http.MethodPost+" "+routeDecode, h.handleDecode)
	mux.HandleFunc(http.MethodPost+" "+routeEncode, h.handleEncode)
	mux.HandleFunc(http.MethodGet+" "+routeValidate, h.handleValidate)
	mux.HandleFunc(http.MethodGet+" "+routeLayout, h.handleLayout)

	mux.HandleFunc(http.MethodGet+" "+routeCharacters, h.handleListCharacters)
	mux.HandleFunc(http.MethodGet+" "+routeCharacter, h.handleGetCharacter)
	mux.HandleFunc(http.MethodPut+" "+routeCharacter, h.requireAuth(h.handlePutCharacter))
	mux.HandleFunc(http.MethodDelete+" "+routeCharacter, h.requireAuth(h.handleDeleteCharacter))
	return mux
}

// NewServer builds a configured editor server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.MaxSessions < 0 {
		return nil, errors.New("max sessions must not be negative")
	}
	if config.Debounce < 0 {
		return nil, errors.New("debounce must not be negative")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store *sqlite.Store
		faces storage.FaceStore
	)
	if path := strings.TrimSpace(config.DBPath); path != "" {
		opened, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open face store: %w", err)
		}
		store = opened
		faces = opened
	}

	var authorizer SessionAuthorizer
	if secret := strings.TrimSpace(config.SessionSecret); secret != "" {
		authorizer = NewTokenAuthorizer([]byte(secret))
	}

	hub := syncengine.NewHub(facecode.NewCodec(facecode.V1), syncengine.HubOptions{
		Engine:      syncengine.Options{Debounce: config.Debounce},
		MaxSessions: config.MaxSessions,
	})
	httpServer := &http.Server{
		Addr: httpAddr,
		Handler: NewHandler(HandlerOptions{
			Hub:        hub,
			Faces:      faces,
			Authorizer: authorizer,
			Metrics:    metrics.NewEditor(),
			Logger:     logger,
		}),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
		hub:             hub,
		store:           store,
		logger:          logger,
	}, nil
}

// Run creates and serves an editor server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init editor server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve editor: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("editor server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	listener, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}
	s.logger.Info("editor server listening", zap.String("addr", listener.Addr().String()))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		// Sessions end first so pending debounce timers never write to
		// connections the HTTP shutdown is tearing down.
		if ids := s.hub.IDs(); len(ids) > 0 {
			s.logger.Info("closing editor sessions", zap.Int("count", len(ids)), zap.Strings("session_ids", ids))
		}
		s.hub.CloseAll()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	s.hub.CloseAll()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("close face store", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}
