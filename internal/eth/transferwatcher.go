package eth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

type SubscriptionState string

const (
	StateConnecting   SubscriptionState = "connecting"
	StateConnected    SubscriptionState = "connected"
	StateReconnecting SubscriptionState = "reconnecting"
	StateFailed       SubscriptionState = "failed"
	StateStopped      SubscriptionState = "stopped"
)

// ReconnectPolicy retries a dropped subscription after a fixed delay. The
// attempt counter starts over once a subscription is established.
type ReconnectPolicy struct {
	Auto        bool
	Delay       time.Duration
	MaxAttempts int
}

type TransfersWatcher interface {
	WatchTransfers(ctx context.Context, collection common.Address, eventsChan chan<- models.TransferEvent) error
	State() SubscriptionState
}

type DefaultTransfersWatcher struct {
	client EthClient
	policy ReconnectPolicy

	mu    sync.RWMutex
	state SubscriptionState
}

func NewTransfersWatcher(client EthClient, policy ReconnectPolicy) *DefaultTransfersWatcher {
	return &DefaultTransfersWatcher{
		client: client,
		policy: policy,
		state:  StateConnecting,
	}
}

func (w *DefaultTransfersWatcher) State() SubscriptionState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *DefaultTransfersWatcher) setState(state SubscriptionState) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
}

// WatchTransfers blocks until ctx is done (returning nil) or the reconnect
// policy is exhausted (returning ErrSubscriptionFailed).
func (w *DefaultTransfersWatcher) WatchTransfers(
	ctx context.Context,
	collection common.Address,
	eventsChan chan<- models.TransferEvent,
) error {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{collection},
		Topics:    [][]common.Hash{{transferSig}},
	}

	zap.L().Info("Starting watch on collection transfers", zap.String("collection", collection.Hex()))

	attempts := 0
	for {
		logsChan := make(chan types.Log, 64)
		sub, err := w.client.SubscribeFilterLogs(ctx, query, logsChan)
		if err == nil {
			attempts = 0
			w.setState(StateConnected)
			zap.L().Info("Transfer subscription connected", zap.String("collection", collection.Hex()))
			err = w.forwardLogs(ctx, sub, logsChan, eventsChan)
		}
		if ctx.Err() != nil {
			w.setState(StateStopped)
			return nil
		}
		zap.L().Error("Transfer subscription error", zap.Int("attempt", attempts), zap.Error(err))

		if !w.policy.Auto || attempts >= w.policy.MaxAttempts {
			w.setState(StateFailed)
			return fmt.Errorf("%w after %d reconnect attempts: %v", ErrSubscriptionFailed, attempts, err)
		}
		attempts++
		w.setState(StateReconnecting)
		zap.L().Warn("Reconnecting transfer subscription",
			zap.Int("attempt", attempts),
			zap.Int("maxAttempts", w.policy.MaxAttempts),
			zap.Duration("delay", w.policy.Delay),
		)
		if sleepInterrupted(ctx, w.policy.Delay) {
			w.setState(StateStopped)
			return nil
		}
	}
}

func (w *DefaultTransfersWatcher) forwardLogs(
	ctx context.Context,
	sub ethereum.Subscription,
	logsChan <-chan types.Log,
	eventsChan chan<- models.TransferEvent,
) error {
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-sub.Err():
			if err == nil {
				err = errors.New("subscription closed")
			}
			return err

		case lg := <-logsChan:
			event, err := DecodeTransferEvent(lg)
			if err != nil {
				zap.L().Warn("Skipping undecodable transfer log", zap.String("txHash", lg.TxHash.Hex()), zap.Error(err))
				continue
			}
			select {
			case eventsChan <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func sleepInterrupted(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}
