package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

type zapAdapter struct {
	*zap.Logger
}

func (z zapAdapter) Errorf(f string, v ...interface{}) {
	z.Sugar().Errorf(f, v...)
}

func (z zapAdapter) Warningf(f string, v ...interface{}) {
	z.Sugar().Warnf(f, v...)
}

func (z zapAdapter) Infof(f string, v ...interface{}) {
	z.Sugar().Infof(f, v...)
}

func (z zapAdapter) Debugf(f string, v ...interface{}) {
	// badger is chatty at debug level
}

// OpenBadger opens the key-value store backing the token metadata cache.
// An empty path keeps everything in memory for the lifetime of the process.
func OpenBadger(path string) (*badger.DB, error) {
	var opts badger.Options
	if path == "" {
		zap.L().Info("Token metadata store path not set, using in-memory store")
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for BadgerDB: %w", err)
		}
		opts = badger.DefaultOptions(path).WithSyncWrites(true)
	}
	opts = opts.WithLogger(zapAdapter{zap.L()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	return db, nil
}
