package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hydrodash/internal/cachebust"
	"hydrodash/internal/chart"
	"hydrodash/internal/models"
	"hydrodash/internal/stations"
	"hydrodash/internal/stats"
)

//go:embed templates/*.html
var templatesFS embed.FS

// SeriesLoader loads forecast series. series.Loader implements it.
type SeriesLoader interface {
	LoadSeries(ctx context.Context, path string) ([]models.SeriesPoint, error)
	Bucketer() *cachebust.Bucketer
}

// Options configures the presentation server
type Options struct {
	StaticDir       string
	ChartWidth      int
	ChartHeight     int
	ZScoreThreshold float64
	Version         string
	Logger          *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	directory *stations.Directory
	loader    SeriesLoader
	bucketer  *cachebust.Bucketer
	opts      Options
	logger    *slog.Logger
	page      *template.Template
	router    *mux.Router
}

// NewServer creates the dashboard server and registers its routes
func NewServer(directory *stations.Directory, loader SeriesLoader, opts Options) (*Server, error) {
	if directory == nil {
		return nil, errors.New("server: station directory is required")
	}
	if loader == nil {
		return nil, errors.New("server: series loader is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ChartWidth <= 0 {
		opts.ChartWidth = chart.DefaultWidth
	}
	if opts.ChartHeight <= 0 {
		opts.ChartHeight = chart.DefaultHeight
	}
	if opts.ZScoreThreshold <= 0 {
		opts.ZScoreThreshold = stats.DefaultZScoreThreshold
	}

	page, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	s := &Server{
		directory: directory,
		loader:    loader,
		bucketer:  loader.Bucketer(),
		opts:      opts,
		logger:    opts.Logger,
		page:      page,
		router:    mux.NewRouter(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.requestID, s.requestLogger)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stations", s.handleStations).Methods(http.MethodGet)
	api.HandleFunc("/stations/{key}", s.handleStation).Methods(http.MethodGet)
	api.HandleFunc("/stations/{key}/series", s.handleSeries).Methods(http.MethodGet)
	api.HandleFunc("/stations/{key}/chart.png", s.handleChart).Methods(http.MethodGet)

	if s.opts.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.opts.StaticDir))).Methods(http.MethodGet, http.MethodHead)
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	}
}
