// Package server exposes a registered admin over HTTP: the HTML pages under
// the admin base path, a JSON API, relation candidates and the bundled assets.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-admingen/components/relations"
	"github.com/goliatone/go-admingen/pkg/admin"
	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/renderers/vanilla"
)

// Default mount points.
const (
	DefaultAPIPath    = "/api"
	DefaultAssetsPath = "/assets"
)

// DefaultShutdownTimeout bounds graceful shutdown in Run.
const DefaultShutdownTimeout = 10 * time.Second

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAPIPath mounts the JSON API under path.
func WithAPIPath(path string) Option {
	return func(s *Server) {
		if trimmed := strings.TrimRight(strings.TrimSpace(path), "/"); trimmed != "" {
			s.apiPath = trimmed
		}
	}
}

// WithRenderer forces a renderer for every HTML page. Empty keeps Accept
// negotiation.
func WithRenderer(name string) Option {
	return func(s *Server) {
		s.renderer = strings.TrimSpace(name)
	}
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
	}
}

// Server serves one admin.
type Server struct {
	admin           *admin.Admin
	logger          *zap.Logger
	apiPath         string
	renderer        string
	shutdownTimeout time.Duration
	router          chi.Router
}

// New builds the router for a.
func New(a *admin.Admin, options ...Option) (*Server, error) {
	if a == nil {
		return nil, errors.New("server: admin is required")
	}
	s := &Server{
		admin:           a,
		logger:          zap.NewNop(),
		apiPath:         DefaultAPIPath,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	base := strings.TrimRight(s.admin.BasePath(), "/")
	if base == "" {
		base = admin.DefaultBasePath
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, base, http.StatusSeeOther)
	})
	r.Route(base, func(pages chi.Router) {
		pages.Get("/", s.handleIndex)
		pages.Get("/{entity}", s.handleList)
		pages.Post("/{entity}", s.handleCreate)
		pages.Get("/{entity}/new", s.handleNew)
		pages.Post("/{entity}/bulk-delete", s.handleBulkDelete)
		pages.Get("/{entity}/{id}", s.handleDetail)
		pages.Post("/{entity}/{id}", s.handleUpdate)
		pages.Get("/{entity}/{id}/edit", s.handleEdit)
		pages.Post("/{entity}/{id}/delete", s.handleDelete)
	})

	r.Route(s.apiPath, func(api chi.Router) {
		api.Get("/{entity}", s.handleAPIList)
		api.Post("/{entity}", s.handleAPICreate)
		api.Get("/{entity}/config", s.handleAPIConfig)
		api.Post("/{entity}/bulk-delete", s.handleAPIBulkDelete)
		api.Get("/{entity}/{id}", s.handleAPIGet)
		api.Put("/{entity}/{id}", s.handleAPIReplace)
		api.Patch("/{entity}/{id}", s.handleAPIPatch)
		api.Delete("/{entity}/{id}", s.handleAPIDelete)
	})

	if _, err := relations.RegisterRoutes(r, "",
		relations.WithFetcher(s.admin.Relations()),
		relations.WithResolver(s.resolveDisplayField),
		relations.WithLogger(s.logger.Named("relations")),
	); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	assets := http.StripPrefix(DefaultAssetsPath+"/", http.FileServer(http.FS(vanilla.AssetsFS())))
	r.Handle(DefaultAssetsPath+"/*", assets)

	s.router = r
	return nil
}

// resolveDisplayField picks the first text field of a registered entity as
// the candidate label.
func (s *Server) resolveDisplayField(name string) (string, bool) {
	entity, err := s.admin.Entity(name)
	if err != nil {
		return "", false
	}
	for _, field := range entity.Config.Fields {
		if field.Type == model.FieldTypeText {
			return field.Key, true
		}
	}
	return "", true
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
