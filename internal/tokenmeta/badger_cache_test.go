package tokenmeta

import (
	"context"
	"errors"
	"testing"

	"github.com/6529-Collections/salesbot/internal/tokenmeta/mocks"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestInMemoryDB(t *testing.T) *badger.DB {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBadgerCache(t *testing.T) {
	wethMeta := models.TokenMeta{Symbol: "WETH", Decimals: 18}

	t.Run("source is hit once per token", func(t *testing.T) {
		source := mocks.NewLookup(t)
		source.On("TokenMeta", mock.Anything, weth).Return(wethMeta, nil).Once()

		cache := NewBadgerCache(setupTestInMemoryDB(t), source)
		for i := 0; i < 3; i++ {
			meta, err := cache.TokenMeta(context.Background(), weth)
			require.NoError(t, err)
			assert.Equal(t, wethMeta, meta)
		}
	})

	t.Run("failures are not cached", func(t *testing.T) {
		source := mocks.NewLookup(t)
		source.On("TokenMeta", mock.Anything, weth).Return(models.TokenMeta{}, errors.New("rate limited")).Once()
		source.On("TokenMeta", mock.Anything, weth).Return(wethMeta, nil).Once()

		cache := NewBadgerCache(setupTestInMemoryDB(t), source)
		_, err := cache.TokenMeta(context.Background(), weth)
		require.Error(t, err)

		meta, err := cache.TokenMeta(context.Background(), weth)
		require.NoError(t, err)
		assert.Equal(t, wethMeta, meta)
	})

	t.Run("entries survive a new cache over the same db", func(t *testing.T) {
		db := setupTestInMemoryDB(t)
		source := mocks.NewLookup(t)
		source.On("TokenMeta", mock.Anything, weth).Return(wethMeta, nil).Once()

		_, err := NewBadgerCache(db, source).TokenMeta(context.Background(), weth)
		require.NoError(t, err)

		meta, err := NewBadgerCache(db, mocks.NewLookup(t)).TokenMeta(context.Background(), weth)
		require.NoError(t, err)
		assert.Equal(t, wethMeta, meta)
	})
}
