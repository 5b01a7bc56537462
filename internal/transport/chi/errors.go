package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/zotsearch/internal/domain"
)

// ErrorCode is the machine-readable error kind returned to clients.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeNotFound         ErrorCode = "not_found"
	CodeSyncInProgress   ErrorCode = "sync_in_progress"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeEmbeddingError   ErrorCode = "embedding_provider_error"
	CodeRemoteLibrary    ErrorCode = "remote_library_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type sentinelMapping struct {
	err    error
	status int
	code   ErrorCode
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []sentinelMapping{
	{domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrInvalidFilter, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrItemNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrDocumentNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrSyncInProgress, http.StatusConflict, CodeSyncInProgress},
	{domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingError},
	{domain.ErrRemoteLibrary, http.StatusBadGateway, CodeRemoteLibrary},
}

// handleDomainError writes the mapped status for known sentinels and a
// generic 500 for everything else. Validation errors keep their full
// message; other sentinels expose only the sentinel text.
func handleDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.err.Error()
		if m.code == CodeValidationFailed {
			msg = err.Error()
		}
		logger.Warn("Domain error", zap.Int("status", m.status), zap.Error(err))
		writeError(w, m.status, m.code, msg)
		return
	}
	logger.Error("Internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
