package sales

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/6529-Collections/salesbot/internal/config"
	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/internal/notify"
	"github.com/6529-Collections/salesbot/internal/pricing"
	"github.com/6529-Collections/salesbot/internal/tokenmeta"
	"github.com/dgraph-io/badger/v4"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// NewSalesListenerFromConfig wires every pipeline stage from cfg. The
// returned func releases the connections the stages hold.
func NewSalesListenerFromConfig(
	cfg config.Config,
	client eth.EthClient,
	store *badger.DB,
	sink notify.Sink,
) (*SalesListener, func() error, error) {
	dedup, err := eth.NewDedupGuard(cfg.DedupCapacity)
	if err != nil {
		return nil, nil, err
	}

	source, err := newTokenMetaSource(cfg, client)
	if err != nil {
		return nil, nil, err
	}
	tokenMeta := tokenmeta.NewBadgerCache(store, source)

	httpClient := &http.Client{Timeout: cfg.ExternalCallTimeout}
	fiat, err := pricing.NewCachedFiatConverter(
		pricing.NewCoinGeckoConverter(cfg.CoingeckoApiUrl, cfg.CoingeckoIds, httpClient),
		pricing.CacheConfig{Addr: cfg.PriceCacheRedis, TTL: cfg.PriceCacheTTL},
	)
	if err != nil {
		return nil, nil, err
	}

	collection := common.HexToAddress(cfg.CollectionContract)
	pipeline := NewPipeline(
		eth.NewAllowListClassifier(cfg.MarketplaceAddrs),
		eth.NewDefaultReceiptDecoder(tokenMeta, cfg.ExternalCallTimeout),
		pricing.NewDefaultPriceAggregator(fiat, cfg.NativeSymbol, cfg.ExternalCallTimeout),
		eth.NewDefaultSaleClassifier(),
		PipelineConfig{
			Collection:    collection,
			AssetUrl:      cfg.CollectionAssetUrl,
			ExplorerTxUrl: cfg.ExplorerTxUrl,
		},
	)
	watcher := eth.NewTransfersWatcher(client, eth.ReconnectPolicy{
		Auto:        cfg.ReconnectAuto,
		Delay:       cfg.ReconnectDelay,
		MaxAttempts: cfg.ReconnectMaxAttempts,
	})

	zap.L().Info("Sales pipeline configured",
		zap.String("collection", collection.Hex()),
		zap.String("name", cfg.CollectionName),
		zap.Int("marketplaces", len(cfg.MarketplaceAddrs)),
		zap.Int("dedupCapacity", cfg.DedupCapacity),
	)

	listener := NewSalesListener(
		client,
		watcher,
		dedup,
		pipeline,
		notify.NewDispatcher(sink, cfg.CollectionName),
		collection,
		cfg.ExternalCallTimeout,
	)
	return listener, fiat.Close, nil
}

func newTokenMetaSource(cfg config.Config, client eth.EthClient) (tokenmeta.Lookup, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.TokenMetaSource)) {
	case "", "etherscan":
		return tokenmeta.NewEtherscanLookup(
			cfg.EtherscanApiUrl,
			cfg.EtherscanApiKey,
			&http.Client{Timeout: cfg.ExternalCallTimeout},
		), nil
	case "chain":
		return tokenmeta.NewChainLookup(client), nil
	default:
		return nil, fmt.Errorf("unknown TOKEN_META_SOURCE %q", cfg.TokenMetaSource)
	}
}
