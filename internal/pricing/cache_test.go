package pricing

import (
	"context"
	"testing"

	"github.com/6529-Collections/salesbot/internal/pricing/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCachedFiatConverter(t *testing.T) {
	t.Run("passes through without an address", func(t *testing.T) {
		base := mocks.NewFiatConverter(t)
		base.On("USDPrice", mock.Anything, "ETH").Return(decimal.NewFromInt(2000), nil).Twice()

		cached, err := NewCachedFiatConverter(base, CacheConfig{})
		require.NoError(t, err)
		defer cached.Close()

		for i := 0; i < 2; i++ {
			price, err := cached.USDPrice(context.Background(), "ETH")
			require.NoError(t, err)
			assert.True(t, decimal.NewFromInt(2000).Equal(price))
		}
	})

	t.Run("unreachable redis fails construction", func(t *testing.T) {
		_, err := NewCachedFiatConverter(mocks.NewFiatConverter(t), CacheConfig{Addr: "127.0.0.1:1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "price cache")
	})

	t.Run("base converter is required", func(t *testing.T) {
		_, err := NewCachedFiatConverter(nil, CacheConfig{})
		assert.Error(t, err)
	})
}
