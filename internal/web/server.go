package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"streamfinder/internal/discovery"
	"streamfinder/internal/logging"
	"streamfinder/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Discovery is the subset of discovery.Service the handlers use.
type Discovery interface {
	Search(ctx context.Context, req discovery.Request) ([]discovery.Movie, error)
	StreamingLink(ctx context.Context, movieID int64, serviceName string) (string, error)
}

// Options configures a Server.
type Options struct {
	Bind      string
	Discovery Discovery
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Server hosts the web shell.
type Server struct {
	bind      string
	logger    *slog.Logger
	discovery Discovery
	metrics   *metrics.Metrics
	templates *template.Template
	choices   discovery.Choices

	router   *mux.Router
	listener net.Listener
	server   *http.Server
}

// New builds the router and templates. It does not listen.
func New(opts Options) (*Server, error) {
	if opts.Discovery == nil {
		return nil, errors.New("web: discovery service required")
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		bind:      strings.TrimSpace(opts.Bind),
		logger:    logging.NewComponentLogger(logger, "web"),
		discovery: opts.Discovery,
		metrics:   opts.Metrics,
		templates: tmpl,
		choices:   discovery.DefaultChoices(),
		router:    mux.NewRouter(),
	}
	s.routes()

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)
	s.router.HandleFunc("/open_streaming_link", s.handleOpenStreamingLink).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/options", s.handleAPIOptions).Methods(http.MethodGet)
	api.HandleFunc("/movies", s.handleAPISearch).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id:[0-9]+}/link", s.handleAPILink).Methods(http.MethodGet)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.Use(s.requestContext, s.accessLog)
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("web listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("web server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
}
