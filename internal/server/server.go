// File: internal/server/server.go
// Inbound HTTP surface: the run endpoint, screenshot downloads, health,
// and static artifact serving.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/einfill/internal/config"
	"github.com/xkilldash9x/einfill/internal/ein"
	"github.com/xkilldash9x/einfill/internal/orchestrator"
	"github.com/xkilldash9x/einfill/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Runner abstracts the orchestrator for handler tests.
type Runner interface {
	Run(ctx context.Context, rec *ein.Record) orchestrator.Result
}

// Server carries the router and its collaborators.
type Server struct {
	cfg     config.ServerConfig
	runner  Runner
	limiter *rate.Limiter
	logger  *zap.Logger
	router  *mux.Router
}

// New builds the server and its routes. Run starts are rate limited
// because each one drives a full browser against the external form.
func New(cfg config.ServerConfig, runner Runner, logger *zap.Logger) *Server {
	perMinute := cfg.RunsPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	burst := cfg.RunBurst
	if burst < 1 {
		burst = 1
	}

	s := &Server{
		cfg:     cfg,
		runner:  runner,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
		logger:  logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/run-irs-ein", s.handleRun).Methods(http.MethodPost)
	r.HandleFunc("/download-screenshot/{record_id}", s.handleDownload).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	s.router = r
	return s
}

// Handler returns the root handler for mounting into an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With(zap.String("remote_addr", r.RemoteAddr))

	if r.Header.Get("Authorization") != "Bearer "+s.cfg.APIKey {
		log.Warn("Rejected run request with invalid API key.")
		s.writeDetail(w, http.StatusUnauthorized, "Invalid API key")
		return
	}

	var req ein.FilingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeDetail(w, http.StatusBadRequest, "Invalid payload format - expected JSON object")
		return
	}
	if err := req.Validate(); err != nil {
		s.writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.limiter.Allow() {
		log.Warn("Run request rejected by rate limiter.", zap.String("record_id", req.EntityProcessID))
		s.writeDetail(w, http.StatusTooManyRequests, "Run rate exceeded, retry later")
		return
	}

	rec := req.ToRecord()
	log.Info("Starting automation run.", zap.String("record_id", rec.RecordID))

	res := s.runner.Run(r.Context(), rec)
	if !res.OK {
		s.writeDetail(w, http.StatusInternalServerError, res.Message)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":   res.Message,
		"status":    "Submitted",
		"record_id": rec.RecordID,
		"png_url":   res.ArtifactURL,
		"blob_url":  res.BlobURL,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	recordID := mux.Vars(r)["record_id"]
	path, err := storage.LatestScreenshot(s.cfg.StaticDir, recordID)
	if err != nil {
		s.writeDetail(w, http.StatusNotFound, "Screenshot not found")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response body.", zap.Error(err))
	}
}
