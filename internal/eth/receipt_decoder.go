package eth

import (
	"context"
	"time"

	"github.com/6529-Collections/salesbot/internal/tokenmeta"
	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiptDecoder sums the fungible token payments made by the buyer of a
// transfer within the same transaction.
type ReceiptDecoder interface {
	Decode(ctx context.Context, logs []*types.Log, event models.TransferEvent) models.PaymentInfo
}

type DefaultReceiptDecoder struct {
	tokenMeta   tokenmeta.Lookup
	callTimeout time.Duration
}

func NewDefaultReceiptDecoder(tokenMeta tokenmeta.Lookup, callTimeout time.Duration) *DefaultReceiptDecoder {
	return &DefaultReceiptDecoder{
		tokenMeta:   tokenMeta,
		callTimeout: callTimeout,
	}
}

func (d *DefaultReceiptDecoder) Decode(ctx context.Context, logs []*types.Log, event models.TransferEvent) models.PaymentInfo {
	total := decimal.Zero
	bySymbol := make(map[string]decimal.Decimal)
	var symbols []string

	for _, lg := range logs {
		if lg == nil || !isTransferLog(lg) || len(lg.Topics) < 3 || len(lg.Data) == 0 {
			continue
		}
		payer, err := DecodeAddressWord(lg.Topics[1])
		if err != nil {
			zap.L().Warn("Skipping payment log", zap.String("txHash", lg.TxHash.Hex()), zap.Uint("logIndex", lg.Index), zap.Error(err))
			continue
		}
		if payer != event.To {
			continue
		}
		amount, err := DecodeUintWord(lg.Data)
		if err != nil {
			zap.L().Warn("Skipping payment log", zap.String("txHash", lg.TxHash.Hex()), zap.Uint("logIndex", lg.Index), zap.Error(err))
			continue
		}
		meta, err := d.lookup(ctx, lg.Address)
		if err != nil {
			zap.L().Warn("Token metadata lookup failed",
				zap.String("txHash", lg.TxHash.Hex()),
				zap.String("token", lg.Address.Hex()),
				zap.Error(err),
			)
			continue
		}

		value := decimal.NewFromBigInt(amount, -int32(meta.Decimals))
		total = total.Add(value)
		if _, ok := bySymbol[meta.Symbol]; !ok {
			symbols = append(symbols, meta.Symbol)
		}
		bySymbol[meta.Symbol] = bySymbol[meta.Symbol].Add(value)
	}

	return models.PaymentInfo{
		Symbol: dominantSymbol(symbols, bySymbol),
		Price:  total,
	}
}

func (d *DefaultReceiptDecoder) lookup(ctx context.Context, token common.Address) (models.TokenMeta, error) {
	if d.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.callTimeout)
		defer cancel()
	}
	return d.tokenMeta.TokenMeta(ctx, token)
}

// dominantSymbol picks the symbol carrying the largest amount, first seen on ties.
func dominantSymbol(symbols []string, bySymbol map[string]decimal.Decimal) string {
	best := ""
	bestAmount := decimal.Zero
	for i, s := range symbols {
		if i == 0 || bySymbol[s].GreaterThan(bestAmount) {
			best = s
			bestAmount = bySymbol[s]
		}
	}
	return best
}
