package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/6529-Collections/salesbot/internal/config"
	"github.com/6529-Collections/salesbot/internal/db"
	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/internal/notify"
	"github.com/6529-Collections/salesbot/internal/rpc"
	"github.com/6529-Collections/salesbot/internal/telemetry"
	"github.com/6529-Collections/salesbot/pkg/sales"
	"go.uber.org/zap"
)

var Version = "dev" // Overridden by release build script

func init() {
	logger := zap.Must(zap.NewProduction())
	if config.Get().LogZapMode == "development" {
		logger = zap.Must(zap.NewDevelopment())
	}
	zap.ReplaceGlobals(logger)
}

func main() {
	zap.L().Info("Starting 6529-Collections/salesbot...",
		zap.String("Version", Version))

	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		zap.L().Fatal("Invalid configuration", zap.Error(err))
	}

	// Main context: canceled when we want to stop normal operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracer(ctx, "salesbot", cfg.OtelExporterEndpoint)
	if err != nil {
		zap.L().Warn("Tracing disabled", zap.Error(err))
	}

	client, err := eth.CreateEthClient()
	if err != nil {
		zap.L().Fatal("Failed to connect to Ethereum node", zap.Error(err))
	}

	store, err := db.OpenBadger(cfg.TokenMetaDbPath)
	if err != nil {
		zap.L().Fatal("Failed to open token metadata store", zap.Error(err))
	}

	sink, closeSinks, err := notify.BuildSink(cfg)
	if err != nil {
		zap.L().Fatal("Failed to create notification sinks", zap.Error(err))
	}

	listener, closeListener, err := sales.NewSalesListenerFromConfig(cfg, client, store, sink)
	if err != nil {
		zap.L().Fatal("Failed to create sales listener", zap.Error(err))
	}
	if err := listener.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start sales listener", zap.Error(err))
	}

	closeRpcServer := func() {}
	if cfg.RPCPort > 0 {
		closeRpcServer = rpc.StartRPCServer(cfg.RPCPort, listener, ctx)
	}

	shutdown := sync.OnceFunc(func() {
		// 1. Stop new requests on RPC
		closeRpcServer()

		// 2. Stop the subscription and wait for the in-flight event
		listener.Stop()
		cancel()

		// 3. Release sinks, caches and the node connection
		if err := errors.Join(closeListener(), closeSinks()); err != nil {
			zap.L().Warn("Error closing sales pipeline", zap.Error(err))
		}
		client.Close()

		// 4. Close DB
		if err := store.Close(); err != nil {
			zap.L().Warn("Error closing DB", zap.Error(err))
		}

		// 5. Flush traces
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracer(flushCtx); err != nil {
			zap.L().Warn("Error flushing traces", zap.Error(err))
		}
	})

	zap.L().Info("Salesbot started successfully")

	// Catch up to two signals: first for graceful, second to force
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	doneCh := make(chan struct{})

	go func() {
		<-sigCh
		zap.L().Info("Received shutdown signal, initiating graceful shutdown...")
		shutdown()
		close(doneCh)

		// If a second signal arrives, force an immediate exit
		<-sigCh
		zap.L().Error("Received second signal, forcing shutdown")
		os.Exit(1)
	}()

	select {
	case err := <-listener.Errors():
		shutdown()
		zap.L().Fatal("Sales listener stopped", zap.Error(err))
	case <-doneCh:
	}

	zap.L().Info("Salesbot stopped.")
	_ = zap.L().Sync()
}
