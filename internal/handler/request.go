package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tamy417/study-partner-server/internal/model"
)

type RequestService interface {
	Create(ctx context.Context, req model.Request) (*model.InsertResult, error)
	List(ctx context.Context, email string) ([]model.Request, error)
	Update(ctx context.Context, id string, patch model.RequestPatch) (*model.UpdateResult, error)
	Delete(ctx context.Context, id string) (*model.DeleteResult, error)
}

// RequestHandler serves the study request endpoints.
type RequestHandler struct {
	service RequestService
	logger  *slog.Logger
}

func NewRequestHandler(svc RequestService, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{service: svc, logger: logger}
}

// HandleCreate stores a new request.
//
// HTTP: POST /requests
func (h *RequestHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.Request
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid request JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	ack, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ack)
}

// HandleList returns the requests a user has made, newest first.
//
// HTTP: GET /requests?email=u@example.com
func (h *RequestHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.List(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(requests))
}

// HandleUpdate merges the supplied fields into a request.
//
// HTTP: PUT /requests/{id}
// REQUEST BODY: {"status":"accepted"}
func (h *RequestHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.RequestPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.logger.Warn("invalid request patch JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	res, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleDelete removes a request.
//
// HTTP: DELETE /requests/{id}
func (h *RequestHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
