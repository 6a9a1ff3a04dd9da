package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	require.NoError(t, NewHealthHandler().Liveness(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]Check
		wantCode   int
		wantStatus string
	}{
		{
			name:       "all healthy",
			checks:     map[string]Check{"mongodb": ok, "redis": ok, "s3": ok},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "bucket unreachable",
			checks: map[string]Check{
				"mongodb": ok,
				"redis":   ok,
				"s3":      func(context.Context) error { return errors.New("no such bucket") },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

			require.NoError(t, NewHealthDependenciesHandler(tt.checks).Readiness(c))
			assert.Equal(t, tt.wantCode, rec.Code)

			var body readinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Len(t, body.Dependencies, len(tt.checks))
			if tt.wantCode != http.StatusOK {
				assert.Equal(t, "unhealthy", body.Dependencies["s3"].Status)
				assert.Equal(t, "no such bucket", body.Dependencies["s3"].Error)
			}
		})
	}
}
