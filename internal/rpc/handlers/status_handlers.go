package handlers

import (
	"net/http"
	"time"

	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/pkg/sales"
)

type StatusSource interface {
	SubscriptionState() eth.SubscriptionState
	Stats() sales.StatsSnapshot
}

type StatusResponse struct {
	Status       string                `json:"status"`
	Subscription eth.SubscriptionState `json:"subscription"`
	Uptime       string                `json:"uptime"`
	Counters     sales.StatsSnapshot   `json:"counters"`
}

// StatusGetHandler reports FAILED once the subscription gave up reconnecting.
func StatusGetHandler(_ *http.Request, source StatusSource, startedAt time.Time) (StatusResponse, error) {
	state := source.SubscriptionState()
	status := "OK"
	if state == eth.StateFailed {
		status = "FAILED"
	}
	return StatusResponse{
		Status:       status,
		Subscription: state,
		Uptime:       time.Since(startedAt).Truncate(time.Second).String(),
		Counters:     source.Stats(),
	}, nil
}
