// Package web serves the farmdesk pages over HTTP. Each browser gets a
// workspace holding the list, form and overlay bus of every page it visits;
// native form posts drive form edits and a datastar event channel carries
// window clicks for outside-interaction detection and row menus.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-farmdesk/internal/farm"
	"github.com/goliatone/go-farmdesk/pkg/model"
	"github.com/goliatone/go-farmdesk/pkg/orchestrator"
	"github.com/goliatone/go-farmdesk/pkg/pages"
	"github.com/goliatone/go-farmdesk/pkg/renderers/vanilla"
	"github.com/goliatone/go-farmdesk/pkg/table"
)

const (
	sessionName     = "farmdesk"
	workspaceKey    = "workspace"
	shutdownTimeout = 5 * time.Second
	workspaceTTL    = 12 * time.Hour
)

// Backend persists form submissions and row deletions.
type Backend interface {
	Save(ctx context.Context, page pages.Page, id string, values model.Values) (map[string]any, error)
	Delete(ctx context.Context, page pages.Page, record table.Record) error
	Prefill(page pages.Page, query url.Values) map[string]any
}

var _ Backend = (*farm.Service)(nil)

// Config holds the server settings.
type Config struct {
	Addr          string
	SessionSecret string
	// PagesDir is reloaded on change when Watch is set.
	PagesDir string
	Watch    bool
	Logger   *zap.Logger
}

// Server is the HTML host.
type Server struct {
	cfg        Config
	orch       *orchestrator.Orchestrator
	backend    Backend
	renderer   *vanilla.Renderer
	sessions   *sessions.CookieStore
	logger     *zap.Logger
	workspaces *workspaces
	generation atomic.Uint64
}

// New constructs a server.
func New(orch *orchestrator.Orchestrator, backend Backend, renderer *vanilla.Renderer, cfg Config) (*Server, error) {
	if orch == nil {
		return nil, errors.New("web: orchestrator is required")
	}
	if backend == nil {
		return nil, errors.New("web: backend is required")
	}
	if renderer == nil {
		return nil, errors.New("web: renderer is required")
	}
	if cfg.Watch && cfg.PagesDir == "" {
		return nil, errors.New("web: watching pages needs a pages directory")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		logger.Warn("no session secret configured; sessions end when the server restarts")
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(int(workspaceTTL / time.Second))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		cfg:        cfg,
		orch:       orch,
		backend:    backend,
		renderer:   renderer,
		sessions:   store,
		logger:     logger,
		workspaces: newWorkspaces(workspaceTTL),
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger(s.logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(vanilla.AssetsFS()))))
	r.Get("/", s.handleIndex)
	r.Route("/{page}", func(r chi.Router) {
		r.Get("/", s.handlePage)
		r.Get("/new", s.handleNew)
		r.Get("/{id}/edit", s.handleEdit)
		r.Post("/form", s.handleForm)
		r.Post("/events", s.handleEvents)
	})
	return r
}

// Serve runs the server, and the page watcher when enabled, until ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch {
		eg.Go(func() error {
			return s.watchPages(egctx)
		})
	}

	eg.Go(func() error {
		s.logger.Info("serving", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web: serve: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Debug("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Reload re-reads the page definitions from the pages directory. Workspaces
// rebuild their page state on the next request. A failed load keeps the
// current definitions.
func (s *Server) Reload() error {
	if s.cfg.PagesDir == "" {
		return errors.New("web: no pages directory to reload")
	}
	store, err := pages.LoadDir(s.cfg.PagesDir)
	if err != nil {
		return fmt.Errorf("web: reload pages: %w", err)
	}
	s.orch.Pages().Replace(store)
	s.generation.Add(1)
	s.logger.Info("pages reloaded", zap.Int("pages", store.Len()))
	return nil
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
