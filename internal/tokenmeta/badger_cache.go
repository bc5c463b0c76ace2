package tokenmeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/dgraph-io/badger/v4"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const tokenMetaPrefix = "tokenmeta:"

// BadgerCache keeps resolved token metadata so each token is looked up once.
// Metadata of deployed tokens does not change, so entries never expire.
type BadgerCache struct {
	db     *badger.DB
	source Lookup
}

func NewBadgerCache(db *badger.DB, source Lookup) *BadgerCache {
	return &BadgerCache{db: db, source: source}
}

func (c *BadgerCache) TokenMeta(ctx context.Context, token common.Address) (models.TokenMeta, error) {
	meta, found, err := c.get(token)
	if err != nil {
		zap.L().Warn("Failed reading token metadata cache", zap.String("token", token.Hex()), zap.Error(err))
	}
	if found {
		return meta, nil
	}

	meta, err = c.source.TokenMeta(ctx, token)
	if err != nil {
		return models.TokenMeta{}, err
	}
	if err := c.set(token, meta); err != nil {
		zap.L().Warn("Failed writing token metadata cache", zap.String("token", token.Hex()), zap.Error(err))
	}
	return meta, nil
}

func (c *BadgerCache) get(token common.Address) (models.TokenMeta, bool, error) {
	var meta models.TokenMeta
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(token))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.TokenMeta{}, false, nil
	}
	if err != nil {
		return models.TokenMeta{}, false, fmt.Errorf("failed to read token metadata: %w", err)
	}
	return meta, true, nil
}

func (c *BadgerCache) set(token common.Address, meta models.TokenMeta) error {
	val, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(token), val)
	})
}

func encodeKey(token common.Address) []byte {
	return append([]byte(tokenMetaPrefix), token.Bytes()...)
}
