package pricing

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/shopspring/decimal"
)

const nativeDecimals = 18

type PriceAggregator interface {
	Aggregate(ctx context.Context, nativeValueWei *big.Int, payment models.PaymentInfo) (models.Price, error)
}

// DefaultPriceAggregator adds the native value sent with the transaction to
// the token payments and converts the total to USD.
type DefaultPriceAggregator struct {
	fiat         FiatConverter
	nativeSymbol string
	callTimeout  time.Duration
}

func NewDefaultPriceAggregator(fiat FiatConverter, nativeSymbol string, callTimeout time.Duration) *DefaultPriceAggregator {
	if nativeSymbol == "" {
		nativeSymbol = "ETH"
	}
	return &DefaultPriceAggregator{
		fiat:         fiat,
		nativeSymbol: nativeSymbol,
		callTimeout:  callTimeout,
	}
}

func (a *DefaultPriceAggregator) Aggregate(ctx context.Context, nativeValueWei *big.Int, payment models.PaymentInfo) (models.Price, error) {
	total := payment.Price
	if nativeValueWei != nil {
		total = decimal.NewFromBigInt(nativeValueWei, -nativeDecimals).Add(total)
	}
	symbol := payment.Symbol
	if symbol == "" {
		symbol = a.nativeSymbol
	}

	if a.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.callTimeout)
		defer cancel()
	}
	rate, err := a.fiat.USDPrice(ctx, symbol)
	if err != nil {
		return models.Price{}, fmt.Errorf("%w: %s: %w", ErrFiatLookup, symbol, err)
	}
	usd := rate.Mul(total)

	return models.Price{
		Total:      total,
		Symbol:     symbol,
		USD:        usd,
		Display:    total.StringFixed(4),
		USDDisplay: "$" + usd.StringFixed(2),
	}, nil
}
