package pricing

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrFiatLookup = errors.New("fiat price lookup failed")

// FiatConverter returns the USD price of one unit of the symbol.
type FiatConverter interface {
	USDPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}
