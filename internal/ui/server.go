// Package ui provides the web dashboard for cricdash.
package ui

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate -path ./features

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/cricdash/internal/cricbuzz"
	"github.com/leapstack-labs/cricdash/internal/crud"
	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
	"github.com/leapstack-labs/cricdash/internal/ui/notifier"
	"github.com/leapstack-labs/cricdash/internal/ui/router"
	"golang.org/x/sync/errgroup"
)

// debounce collapses bursts of writes to the analytics database.
const debounce = 250 * time.Millisecond

// Server is the dashboard server.
type Server struct {
	deps         common.Deps
	sessionStore *sessions.CookieStore
	host         string
	port         int
	watch        bool
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server. CRUD and API may be nil.
type Config struct {
	Store           *store.Store
	CRUD            *crud.Service
	API             *cricbuzz.Client
	Logger          *slog.Logger
	QueryTimeout    time.Duration
	DefaultDatabase string
	DefaultLimit    int

	Host          string
	Port          int
	Watch         bool
	SessionSecret string
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	n := notifier.New()

	return &Server{
		deps: common.Deps{
			Store:           cfg.Store,
			CRUD:            cfg.CRUD,
			API:             cfg.API,
			Sessions:        sessionStore,
			Notifier:        n,
			Logger:          logger,
			QueryTimeout:    cfg.QueryTimeout,
			DefaultDatabase: cfg.DefaultDatabase,
			DefaultLimit:    cfg.DefaultLimit,
		},
		sessionStore: sessionStore,
		host:         cfg.Host,
		port:         cfg.Port,
		watch:        cfg.Watch,
		logger:       logger,
		notifier:     n,
	}
}

// Handler builds the routed HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger(s.logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.deps); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, fmt.Sprint(s.port))
}

// URL returns the browser URL of the dashboard.
func (s *Server) URL() string {
	host := s.host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(s.port)))
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	s.logger.Info("starting UI server", slog.String("addr", s.URL()))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.Addr(),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchAnalytics(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchAnalytics broadcasts a change when the analytics database file or
// its journal is written. The directory is watched because SQLite
// replaces journal files rather than writing them in place. The event
// detail always names the database file, never the journal.
func (s *Server) watchAnalytics(ctx context.Context) error {
	if s.deps.Store == nil || s.deps.Store.Path() == ":memory:" {
		return nil
	}
	dbPath := s.deps.Store.Path()
	return watchDatabase(ctx, dbPath, s.logger, func(name string) {
		s.logger.Debug("analytics database changed", slog.String("file", name))
		s.notifier.Broadcast(notifier.SourceAnalytics, filepath.Base(dbPath))
	})
}

func watchDatabase(ctx context.Context, dbPath string, logger *slog.Logger, onChange func(string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(dbPath)
	if err := watcher.Add(dir); err != nil {
		logger.Error("failed to watch analytics database", slog.String("dir", dir), slog.String("error", err.Error()))
		// keep serving without change notifications
		<-ctx.Done()
		return nil
	}

	base := filepath.Base(dbPath)
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isDatabaseFile(filepath.Base(event.Name), base) {
				continue
			}

			name := event.Name
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() { onChange(name) })
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// isDatabaseFile matches the database file and its SQLite side files.
func isDatabaseFile(name, base string) bool {
	if name == base {
		return true
	}
	for _, suffix := range []string{"-wal", "-journal", "-shm"} {
		if name == base+suffix {
			return true
		}
	}
	return false
}

// requestLogger logs each request through slog once it completes.
// Long-lived SSE streams are logged at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if strings.HasPrefix(r.URL.Path, "/static/") || r.URL.Path == "/api/updates" || r.URL.Path == "/healthz" {
				level = slog.LevelDebug
			}
			logger.Log(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
