package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/pkg/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStatus struct {
	state eth.SubscriptionState
	stats sales.StatsSnapshot
}

func (f fixedStatus) SubscriptionState() eth.SubscriptionState { return f.state }
func (f fixedStatus) Stats() sales.StatsSnapshot              { return f.stats }

func TestStatusGetHandler(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		source := fixedStatus{state: eth.StateConnected, stats: sales.StatsSnapshot{Received: 4, Sales: 1}}
		resp, err := StatusGetHandler(nil, source, time.Now().Add(-90*time.Second))
		require.NoError(t, err)
		assert.Equal(t, "OK", resp.Status)
		assert.Equal(t, eth.StateConnected, resp.Subscription)
		assert.Equal(t, "1m30s", resp.Uptime)
		assert.Equal(t, uint64(4), resp.Counters.Received)
	})

	t.Run("failed", func(t *testing.T) {
		resp, err := StatusGetHandler(nil, fixedStatus{state: eth.StateFailed}, time.Now())
		require.NoError(t, err)
		assert.Equal(t, "FAILED", resp.Status)
	})

	t.Run("served as json", func(t *testing.T) {
		source := fixedStatus{state: eth.StateReconnecting, stats: sales.StatsSnapshot{Sweeps: 2}}
		server := setupTestServer(t, MethodHandlers{
			CreateApiPath(ApiV1, "status"): {
				HTTP_GET: func(r *http.Request) (any, error) {
					return StatusGetHandler(r, source, time.Now())
				},
			},
		})

		resp, err := http.Get(server.URL + "/api/v1/status")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "reconnecting", body["subscription"])
		counters, ok := body["counters"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(2), counters["sweeps"])
	})
}
