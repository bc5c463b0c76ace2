package sales

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/internal/notify"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

const eventsBufferSize = 128

var ErrAlreadyStarted = errors.New("sales listener already started")

// SalesListener owns the transfer subscription of one collection and is the
// only consumer of its events, so events are processed one at a time.
type SalesListener struct {
	client      eth.EthClient
	watcher     eth.TransfersWatcher
	dedup       eth.DedupGuard
	pipeline    *Pipeline
	dispatcher  notify.NotificationDispatcher
	collection  common.Address
	callTimeout time.Duration

	stats Stats

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
	errs   chan error
}

func NewSalesListener(
	client eth.EthClient,
	watcher eth.TransfersWatcher,
	dedup eth.DedupGuard,
	pipeline *Pipeline,
	dispatcher notify.NotificationDispatcher,
	collection common.Address,
	callTimeout time.Duration,
) *SalesListener {
	return &SalesListener{
		client:      client,
		watcher:     watcher,
		dedup:       dedup,
		pipeline:    pipeline,
		dispatcher:  dispatcher,
		collection:  collection,
		callTimeout: callTimeout,
		errs:        make(chan error, 1),
	}
}

// Start launches the watcher and the consumer and returns immediately.
// A terminal watcher error is delivered on Errors.
func (l *SalesListener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	events := make(chan models.TransferEvent, eventsBufferSize)

	l.wg.Add(2)
	go func() {
		defer l.wg.Done()
		defer cancel()
		if err := l.watcher.WatchTransfers(ctx, l.collection, events); err != nil {
			l.errs <- err
		}
	}()
	go func() {
		defer l.wg.Done()
		l.consume(ctx, events)
	}()
	return nil
}

// Stop cancels the subscription and waits for the in-flight event to finish.
func (l *SalesListener) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	l.wg.Wait()
}

func (l *SalesListener) Errors() <-chan error {
	return l.errs
}

func (l *SalesListener) SubscriptionState() eth.SubscriptionState {
	return l.watcher.State()
}

func (l *SalesListener) Stats() StatsSnapshot {
	return l.stats.Snapshot()
}

func (l *SalesListener) consume(ctx context.Context, events <-chan models.TransferEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			l.handleEvent(ctx, event)
		}
	}
}

func (l *SalesListener) handleEvent(ctx context.Context, event models.TransferEvent) {
	l.stats.received.Add(1)
	fields := []zap.Field{
		zap.String("txHash", event.TxHash.Hex()),
		zap.String("tokenId", tokenIdString(event)),
		zap.Uint64("block", event.BlockNumber),
	}

	if event.Removed {
		l.stats.removed.Add(1)
		zap.L().Info("Transfer changed by chain reorganisation", fields...)
		return
	}
	if !l.dedup.ShouldProcess(event.TxHash) {
		l.stats.duplicates.Add(1)
		zap.L().Debug("Transaction already processed", fields...)
		return
	}

	txCtx, err := l.fetchTxContext(ctx, event.TxHash)
	if err != nil {
		l.stats.failures.Add(1)
		zap.L().Error("Failed to fetch transaction", append(fields, zap.Error(err))...)
		return
	}

	record, err := l.pipeline.Process(ctx, event, txCtx)
	if err != nil {
		l.stats.failures.Add(1)
		zap.L().Error("Failed to process transfer", append(fields, zap.Error(err))...)
		return
	}

	switch r := record.(type) {
	case nil:
		l.stats.nonSales.Add(1)
		return
	case *models.SaleRecord:
		l.stats.sales.Add(1)
		zap.L().Info("Sale detected", append(fields, zap.String("price", r.Price), zap.String("symbol", r.Symbol))...)
	case *models.SweepRecord:
		l.stats.sweeps.Add(1)
		zap.L().Info("Sweep detected", append(fields, zap.Int("count", r.Count), zap.String("price", r.Price), zap.String("symbol", r.Symbol))...)
	}

	dispatchCtx, cancel := l.withTimeout(ctx)
	defer cancel()
	if err := l.dispatcher.Dispatch(dispatchCtx, record); err != nil {
		l.stats.dispatchFailures.Add(1)
	}
}

func (l *SalesListener) fetchTxContext(ctx context.Context, txHash common.Hash) (models.TxContext, error) {
	txCtx, cancel := l.withTimeout(ctx)
	tx, _, err := l.client.TransactionByHash(txCtx, txHash)
	cancel()
	if err != nil {
		return models.TxContext{}, fmt.Errorf("%w: transaction %s: %w", eth.ErrLookup, txHash.Hex(), err)
	}

	rcCtx, cancel := l.withTimeout(ctx)
	receipt, err := l.client.TransactionReceipt(rcCtx, txHash)
	cancel()
	if err != nil {
		return models.TxContext{}, fmt.Errorf("%w: receipt %s: %w", eth.ErrLookup, txHash.Hex(), err)
	}

	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return models.TxContext{}, fmt.Errorf("%w: sender of %s: %w", eth.ErrLookup, txHash.Hex(), err)
	}

	return models.TxContext{
		Hash:  txHash,
		To:    tx.To(),
		From:  sender,
		Value: tx.Value(),
		Logs:  receipt.Logs,
	}, nil
}

func (l *SalesListener) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.callTimeout)
}
