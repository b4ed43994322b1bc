package api

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/airdash/internal/dataset"
	"github.com/lox/airdash/internal/imagegen"
	"github.com/lox/airdash/internal/metrics"
	"github.com/lox/airdash/internal/report"
	"github.com/lox/airdash/internal/store"
)

// Server serves the dashboard over a catalog that is fixed for the life of
// the process. Handlers only read from it.
type Server struct {
	catalog *dataset.Catalog
	store   *store.Store
	reports *report.Client
	port    string
	tmpl    *template.Template
	gallery *Gallery
	cards   *imagegen.CardCache
}

// NewServer builds a server for cat. st may be nil, in which case report
// fetches and loads are not audited.
func NewServer(cat *dataset.Catalog, st *store.Store, reports *report.Client, port string) *Server {
	gallery, err := parseGallery(galleryYAML)
	if err != nil {
		log.Printf("api: gallery disabled: %v", err)
		gallery = &Gallery{}
	}
	return &Server{
		catalog: cat,
		store:   st,
		reports: reports,
		port:    port,
		tmpl:    newTemplates(),
		gallery: gallery,
		cards:   imagegen.NewCardCache(time.Hour),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /report/{station}", s.handleReport)
	mux.HandleFunc("GET /og/{file}", s.handleOGImage)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/stations", s.handleAPIStations)
	mux.HandleFunc("GET /api/stations/{station}", s.handleAPIStation)
	mux.HandleFunc("GET /api/stations/{station}/describe", s.handleAPIDescribe)
	mux.HandleFunc("GET /api/stations/{station}/report", s.handleAPIReport)
	mux.HandleFunc("GET /api/loads", s.handleAPILoads)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on :%s", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// resolve maps a station name to its table, answering 404 for names the
// index does not know.
func (s *Server) resolve(w http.ResponseWriter, station string) (*dataset.Table, bool) {
	tbl, err := s.catalog.Resolve(station)
	if err != nil {
		var unknown *dataset.UnknownStationError
		if errors.As(err, &unknown) {
			metrics.StationResolutionsTotal.WithLabelValues("unknown").Inc()
			http.Error(w, err.Error(), http.StatusNotFound)
			return nil, false
		}
		metrics.StationResolutionsTotal.WithLabelValues("error").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	metrics.StationResolutionsTotal.WithLabelValues("found").Inc()
	return tbl, true
}
