package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamy417/study-partner-server/internal/handler"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler_Root(t *testing.T) {
	h := handler.NewHealthHandler("study-partner-server", "1.0.0", stubPinger{})
	rr := httptest.NewRecorder()

	h.HandleRoot(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Study Partner Server is running successfully!", rr.Body.String())
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus string
		wantStore  string
	}{
		{name: "store up", wantStatus: "healthy", wantStore: "up"},
		{name: "store down", pingErr: errors.New("no reachable servers"), wantStatus: "degraded", wantStore: "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler("study-partner-server", "1.2.3", stubPinger{err: tt.pingErr})
			rr := httptest.NewRecorder()

			h.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			var body handler.HealthResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantStore, body.Store)
			assert.Equal(t, "1.2.3", body.Version)
			assert.Equal(t, "study-partner-server", body.Service)
			assert.False(t, body.Timestamp.IsZero())
		})
	}
}
