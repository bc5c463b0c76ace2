package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/pkg/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCreateApiPath(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Path
	}{
		{"status", "status", Path("/api/v1/status")},
		{"leading slash", "/status", Path("/api/v1/status")},
		{"empty", "", Path("/api/v1/")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CreateApiPath(ApiV1, tc.input))
		})
	}
}

func statusRoutes(handler func(r *http.Request) (any, error)) MethodHandlers {
	return MethodHandlers{
		CreateApiPath(ApiV1, "status"): {
			HTTP_GET: handler,
		},
	}
}

func TestSetupHandlers(t *testing.T) {
	source := fixedStatus{state: eth.StateConnected, stats: sales.StatsSnapshot{Received: 3, DispatchFailures: 1}}
	statusHandler := func(r *http.Request) (any, error) {
		return StatusGetHandler(r, source, time.Now())
	}

	t.Run("status is served as json", func(t *testing.T) {
		server := setupTestServer(t, statusRoutes(statusHandler))

		resp, err := http.Get(server.URL + "/api/v1/status")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var body StatusResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "OK", body.Status)
		assert.Equal(t, source.stats, body.Counters)
	})

	t.Run("status only answers GET", func(t *testing.T) {
		server := setupTestServer(t, statusRoutes(statusHandler))

		resp, err := http.Post(server.URL+"/api/v1/status", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("handler error is logged", func(t *testing.T) {
		oldLogger := zap.L()
		core, recorded := observer.New(zap.InfoLevel)
		zap.ReplaceGlobals(zap.New(core))
		defer zap.ReplaceGlobals(oldLogger)

		server := setupTestServer(t, statusRoutes(func(r *http.Request) (any, error) {
			return nil, errors.New("listener not started")
		}))

		resp, err := http.Get(server.URL + "/api/v1/status")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, 1, recorded.FilterMessage("failed to handle request").Len())
	})

	t.Run("unknown path", func(t *testing.T) {
		server := setupTestServer(t, statusRoutes(statusHandler))

		resp, err := http.Get(server.URL + "/api/v1/sales")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func setupTestServer(t *testing.T, handlersMap MethodHandlers) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	SetupHandlers(mux, handlersMap)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
