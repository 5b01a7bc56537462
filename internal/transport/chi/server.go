// Package chi serves the search tools over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/zotsearch/internal/logger"
	"github.com/kailas-cloud/zotsearch/internal/metrics"
	healthuc "github.com/kailas-cloud/zotsearch/internal/usecase/health"
	"github.com/kailas-cloud/zotsearch/internal/usecase/indexsync"
	searchuc "github.com/kailas-cloud/zotsearch/internal/usecase/search"
)

// maxBodyBytes bounds request bodies; all tool inputs are small JSON objects.
const maxBodyBytes = 1 << 20

// UpdateRequest is the body of the update tool. Both fields are optional.
type UpdateRequest struct {
	ForceRebuild bool `json:"force_rebuild"`
	Limit        int  `json:"limit"`
}

// DeleteResponse confirms an item removal.
type DeleteResponse struct {
	ItemKey string `json:"item_key"`
	Deleted bool   `json:"deleted"`
}

// Server holds the HTTP handlers.
type Server struct {
	search  Searcher
	updater Updater
	deleter DocumentDeleter
	health  HealthChecker
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	updater Updater,
	deleter DocumentDeleter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:  search,
		updater: updater,
		deleter: deleter,
		health:  health,
		logger:  logger,
	}
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/tools", func(r chi.Router) {
		r.Post("/zotero_semantic_search", s.SemanticSearch)
		r.Post("/zotero_update_search_database", s.UpdateDatabase)
		r.Get("/zotero_get_search_database_status", s.DatabaseStatus)
	})
	r.Delete("/items/{key}", s.DeleteItem)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// SemanticSearch handles POST /tools/zotero_semantic_search.
func (s *Server) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req searchuc.Request
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		handleDomainError(w, s.log(r), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateDatabase handles POST /tools/zotero_update_search_database.
// The run is detached from the request context so a dropped client does not
// abort a sync halfway.
func (s *Server) UpdateDatabase(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "limit must not be negative")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	report, err := s.updater.Run(ctx, indexsync.Options{ForceRebuild: req.ForceRebuild, Limit: req.Limit})
	if err != nil {
		handleDomainError(w, s.log(r), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// DatabaseStatus handles GET /tools/zotero_get_search_database_status.
func (s *Server) DatabaseStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.updater.Status(r.Context())
	if err != nil {
		handleDomainError(w, s.log(r), err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// DeleteItem handles DELETE /items/{key}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "item key is required")
		return
	}

	if err := s.deleter.DeleteDocument(r.Context(), key); err != nil {
		handleDomainError(w, s.log(r), err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{ItemKey: key, Deleted: true})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// decode reads a JSON body into v. An empty body leaves v at its zero value.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
	return false
}

func (s *Server) log(r *http.Request) *zap.Logger {
	return logpkg.FromContext(r.Context(), s.logger)
}
