package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so success bodies
// and error envelopes have one shape across the API.
//
// Error envelope:
//   {"error": "not_found", "message": "partner not found with id 65f1..."}

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tamy417/study-partner-server/internal/apperror"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the error body returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable kind (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps an error kind to its HTTP status and machine-readable name.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrMissingParameter):
		return http.StatusBadRequest, "missing_parameter"
	case errors.Is(err, apperror.ErrInvalidSchema):
		return http.StatusBadRequest, "invalid_schema"
	case errors.Is(err, apperror.ErrInvalidIdentifier):
		return http.StatusBadRequest, "invalid_identifier"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, apperror.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, apperror.ErrUpdateFailed):
		return http.StatusInternalServerError, "update_failed"
	case errors.Is(err, apperror.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// WriteError is writeError for code outside this package (the rate limit
// middleware), so every error response shares one envelope and one mapping.
func WriteError(w http.ResponseWriter, err error) {
	writeError(w, err)
}

// writeError is the single place where domain errors become HTTP responses.
//
// errors.As finds the *AppError anywhere in the chain, so services may wrap
// with fmt.Errorf("...: %w") freely. Anything that is not an AppError is
// reported as a generic 500: raw store errors can carry connection strings
// or query text and never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, kind := statusFor(appErr)
		writeJSON(w, status, ErrorResponse{
			Error:   kind,
			Message: appErr.Message,
		})
		return
	}

	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads one JSON value from the request body into dst.
// Unknown fields are ignored; a malformed body is an invalid_schema error.
//
// BODY SIZE LIMIT:
// http.MaxBytesReader stops reading after maxBodyBytes and makes the decoder
// fail with *http.MaxBytesError. That is not a malformed body, so it is
// reported separately as payload_too_large (413) rather than invalid_schema.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.PayloadTooLarge(tooLarge.Limit)
		}
		return apperror.InvalidSchema("", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}
