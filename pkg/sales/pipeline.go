package sales

import (
	"context"

	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/internal/pricing"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type PipelineConfig struct {
	Collection    common.Address
	AssetUrl      string
	ExplorerTxUrl string
}

// Pipeline turns one deduplicated transfer and its transaction into a sale
// or sweep record.
type Pipeline struct {
	marketplace eth.MarketplaceClassifier
	decoder     eth.ReceiptDecoder
	aggregator  pricing.PriceAggregator
	classifier  eth.SaleClassifier
	cfg         PipelineConfig
}

func NewPipeline(
	marketplace eth.MarketplaceClassifier,
	decoder eth.ReceiptDecoder,
	aggregator pricing.PriceAggregator,
	classifier eth.SaleClassifier,
	cfg PipelineConfig,
) *Pipeline {
	return &Pipeline{
		marketplace: marketplace,
		decoder:     decoder,
		aggregator:  aggregator,
		classifier:  classifier,
		cfg:         cfg,
	}
}

// Process returns (nil, nil) when the transaction did not go through a
// known marketplace.
func (p *Pipeline) Process(ctx context.Context, event models.TransferEvent, tx models.TxContext) (models.Record, error) {
	ctx, span := otel.Tracer("salesbot/sales").Start(ctx, "sales.process")
	defer span.End()
	span.SetAttributes(
		attribute.String("tx.hash", event.TxHash.Hex()),
		attribute.String("token.id", tokenIdString(event)),
		attribute.Int64("block.number", int64(event.BlockNumber)),
	)

	if !p.marketplace.IsMarketplaceSale(event.TxHash, tx.To) {
		span.SetAttributes(attribute.Bool("sale", false))
		return nil, nil
	}

	payment := p.decoder.Decode(ctx, tx.Logs, event)
	price, err := p.aggregator.Aggregate(ctx, tx.Value, payment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	kind, count := p.classifier.Classify(p.classifier.CountTokensMoved(tx.Logs, p.cfg.Collection, tx.From))
	span.SetAttributes(
		attribute.Bool("sale", true),
		attribute.String("sale.kind", string(kind)),
		attribute.Int("sale.count", count),
		attribute.String("price.symbol", price.Symbol),
	)

	if kind == eth.SWEEP {
		return &models.SweepRecord{
			Count:    count,
			Price:    price.Display,
			Symbol:   price.Symbol,
			USDPrice: price.USDDisplay,
			URL:      p.cfg.ExplorerTxUrl + event.TxHash.Hex(),
		}, nil
	}
	return &models.SaleRecord{
		TokenID:  tokenIdString(event),
		Price:    price.Display,
		Symbol:   price.Symbol,
		USDPrice: price.USDDisplay,
		Buyer:    event.To.Hex(),
		Seller:   event.From.Hex(),
		URL:      p.cfg.AssetUrl + tokenIdString(event),
	}, nil
}

func tokenIdString(event models.TransferEvent) string {
	if event.TokenID == nil {
		return ""
	}
	return event.TokenID.String()
}
