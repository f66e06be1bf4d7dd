package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/tamy417/study-partner-server/internal/apperror"
	"github.com/tamy417/study-partner-server/internal/handler"
	"github.com/tamy417/study-partner-server/internal/model"
)

type MockRequestService struct {
	CapturedID    string
	CapturedEmail string
	CapturedReq   model.Request
	CapturedPatch model.RequestPatch

	Requests  []model.Request
	InsertRes *model.InsertResult
	UpdateRes *model.UpdateResult
	DeleteRes *model.DeleteResult
	ReturnErr error
}

func (m *MockRequestService) Create(_ context.Context, req model.Request) (*model.InsertResult, error) {
	m.CapturedReq = req
	return m.InsertRes, m.ReturnErr
}

func (m *MockRequestService) List(_ context.Context, email string) ([]model.Request, error) {
	m.CapturedEmail = email
	return m.Requests, m.ReturnErr
}

func (m *MockRequestService) Update(_ context.Context, id string, patch model.RequestPatch) (*model.UpdateResult, error) {
	m.CapturedID, m.CapturedPatch = id, patch
	return m.UpdateRes, m.ReturnErr
}

func (m *MockRequestService) Delete(_ context.Context, id string) (*model.DeleteResult, error) {
	m.CapturedID = id
	return m.DeleteRes, m.ReturnErr
}

func requestRouter(svc handler.RequestService) http.Handler {
	h := handler.NewRequestHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Post("/requests", h.HandleCreate)
	r.Get("/requests", h.HandleList)
	r.Put("/requests/{id}", h.HandleUpdate)
	r.Delete("/requests/{id}", h.HandleDelete)
	return r
}

func TestRequestHandler_Create(t *testing.T) {
	mock := &MockRequestService{InsertRes: &model.InsertResult{Acknowledged: true, InsertedID: "r1"}}
	rr := serve(requestRouter(mock), http.MethodPost, "/requests",
		`{"partnerId":"p1","userEmail":"u@example.com","message":"hi","status":"pending"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "p1", mock.CapturedReq.PartnerID)
	assert.Equal(t, "pending", mock.CapturedReq.Status)
	assert.JSONEq(t, `{"acknowledged":true,"insertedId":"r1"}`, rr.Body.String())
}

func TestRequestHandler_List(t *testing.T) {
	t.Run("empty list is []", func(t *testing.T) {
		mock := &MockRequestService{}
		rr := serve(requestRouter(mock), http.MethodGet, "/requests?email=u@example.com", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "u@example.com", mock.CapturedEmail)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("missing email", func(t *testing.T) {
		mock := &MockRequestService{ReturnErr: apperror.MissingParameter("email")}
		rr := serve(requestRouter(mock), http.MethodGet, "/requests", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "missing_parameter", decodeError(t, rr).Error)
	})
}

func TestRequestHandler_Update(t *testing.T) {
	t.Run("only present fields reach the service", func(t *testing.T) {
		mock := &MockRequestService{UpdateRes: &model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}}
		rr := serve(requestRouter(mock), http.MethodPut, "/requests/r1", `{"status":"accepted"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "r1", mock.CapturedID)
		assert.Equal(t, map[string]string{"status": "accepted"}, mock.CapturedPatch.Fields())
	})

	t.Run("update failure", func(t *testing.T) {
		mock := &MockRequestService{ReturnErr: apperror.UpdateFailed("request", errors.New("write concern timeout"))}
		rr := serve(requestRouter(mock), http.MethodPut, "/requests/r1", `{"status":"accepted"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		body := decodeError(t, rr)
		assert.Equal(t, "update_failed", body.Error)
		assert.Equal(t, "Failed to update request", body.Message)
	})

	t.Run("malformed JSON never reaches the service", func(t *testing.T) {
		mock := &MockRequestService{}
		rr := serve(requestRouter(mock), http.MethodPut, "/requests/r1", `not json`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, mock.CapturedID)
	})
}

func TestRequestHandler_Delete(t *testing.T) {
	mock := &MockRequestService{DeleteRes: &model.DeleteResult{Acknowledged: true, DeletedCount: 1}}
	rr := serve(requestRouter(mock), http.MethodDelete, "/requests/r9", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "r9", mock.CapturedID)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, rr.Body.String())
}
