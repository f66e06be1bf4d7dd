package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tamy417/study-partner-server/internal/model"
)

// PartnerService is what the partner endpoints need from the service layer.
// *service.PartnerService satisfies it; tests pass a mock.
type PartnerService interface {
	Create(ctx context.Context, fields model.PartnerFields) (*model.InsertResult, error)
	Top(ctx context.Context) ([]model.Partner, error)
	List(ctx context.Context, subject, sort string) ([]model.Partner, error)
	Get(ctx context.Context, id string) (*model.Partner, error)
	Connections(ctx context.Context, email string) ([]model.Partner, error)
	Replace(ctx context.Context, id string, fields model.PartnerFields) (*model.UpdateResult, error)
	SendRequest(ctx context.Context, id string) (*model.UpdateResult, error)
	Delete(ctx context.Context, id string) (*model.DeleteResult, error)
}

// PartnerHandler serves the partner profile endpoints.
// Handlers only parse the request and encode the result; every rule lives in
// the service.
type PartnerHandler struct {
	service PartnerService
	logger  *slog.Logger
}

func NewPartnerHandler(svc PartnerService, logger *slog.Logger) *PartnerHandler {
	return &PartnerHandler{service: svc, logger: logger}
}

// HandleCreate stores a new partner.
//
// HTTP: POST /partners
// RESPONSE: 201 {"acknowledged":true,"insertedId":"65f1..."}
func (h *PartnerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var fields model.PartnerFields
	if err := decodeJSON(w, r, &fields); err != nil {
		h.logger.Warn("invalid partner JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	ack, err := h.service.Create(r.Context(), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ack)
}

// HandleList returns all partners.
//
// HTTP: GET /partners?subject=math&sort=asc
//
// subject narrows by case-insensitive substring; sort orders by
// experienceLevel and only "asc" or "desc" have an effect.
func (h *PartnerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	partners, err := h.service.List(r.Context(), q.Get("subject"), q.Get("sort"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(partners))
}

// HandleTop returns the six highest rated partners.
//
// HTTP: GET /topPartners
func (h *PartnerHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	partners, err := h.service.Top(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(partners))
}

// HandleGet returns one partner.
//
// HTTP: GET /partners/{id}
func (h *PartnerHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	partner, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, partner)
}

// HandleConnections lists the partner profiles registered under an email.
//
// HTTP: GET /myConnections?email=u@example.com
func (h *PartnerHandler) HandleConnections(w http.ResponseWriter, r *http.Request) {
	partners, err := h.service.Connections(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(partners))
}

// HandleReplace overwrites the editable partner fields.
//
// HTTP: PUT /partners/{id}
// RESPONSE: 200 {"acknowledged":true,"matchedCount":1,"modifiedCount":1,...}
func (h *PartnerHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	var fields model.PartnerFields
	if err := decodeJSON(w, r, &fields); err != nil {
		h.logger.Warn("invalid partner JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	res, err := h.service.Replace(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleSendRequest increments the partner's request counter.
//
// HTTP: PATCH /sendRequest/{id}
func (h *PartnerHandler) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.SendRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleDelete removes a partner.
//
// HTTP: DELETE /partners/{id}
// RESPONSE: 200 {"acknowledged":true,"deletedCount":1}
func (h *PartnerHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// nonNil makes sure an empty result encodes as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
