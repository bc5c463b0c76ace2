package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	priceCacheKeyPrefix = "salesbot:usd:"
	defaultPriceTTL     = time.Minute
)

type CacheConfig struct {
	Addr string
	TTL  time.Duration
}

// CachedFiatConverter keeps fiat prices in Redis for a short TTL. Without an
// address it passes every call through to the base converter.
type CachedFiatConverter struct {
	base  FiatConverter
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedFiatConverter(base FiatConverter, cfg CacheConfig) (*CachedFiatConverter, error) {
	if base == nil {
		return nil, errors.New("base converter is required")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return &CachedFiatConverter{base: base}, nil
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultPriceTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach price cache: %w", err)
	}
	return &CachedFiatConverter{base: base, cache: client, ttl: cfg.TTL}, nil
}

func (c *CachedFiatConverter) USDPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if c.cache == nil {
		return c.base.USDPrice(ctx, symbol)
	}
	key := priceCacheKeyPrefix + strings.ToUpper(symbol)
	cached, err := c.cache.Get(ctx, key).Result()
	if err == nil {
		if price, err := decimal.NewFromString(cached); err == nil {
			return price, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		zap.L().Warn("Price cache read failed", zap.String("symbol", symbol), zap.Error(err))
	}

	price, err := c.base.USDPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if err := c.cache.Set(ctx, key, price.String(), c.ttl).Err(); err != nil {
		zap.L().Warn("Price cache write failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return price, nil
}

func (c *CachedFiatConverter) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Close()
}
