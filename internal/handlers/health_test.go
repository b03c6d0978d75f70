package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"returns-service/internal/cache"
)

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	handler := NewHealthHandler(fakePinger{}, cache.NoopCache{})
	router := setupTestRouter("")
	router.GET("/health", handler.HealthCheck)

	w := performRequest(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"returns-service"}`, w.Body.String())
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantError  string
	}{
		{"no database", nil, http.StatusServiceUnavailable, "database connection error"},
		{"ping fails", fakePinger{err: errors.New("refused")}, http.StatusServiceUnavailable, "database ping failed"},
		{"ready", fakePinger{}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, nil)
			router := setupTestRouter("")
			router.GET("/ready", handler.ReadinessCheck)

			w := performRequest(router, http.MethodGet, "/ready", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(w)
			if tt.wantError != "" {
				assert.Equal(t, "unhealthy", body["status"])
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, "ready", body["status"])
			assert.Equal(t, "disabled", body["cache"])
		})
	}
}
