package notify

import (
	"fmt"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
)

const shortAddressLength = 8

func FormatSale(collectionName string, r *models.SaleRecord) string {
	return fmt.Sprintf("%s %s bought for %s%s (%s) by %s from %s %s",
		collectionName,
		r.TokenID,
		r.Price,
		r.Symbol,
		r.USDPrice,
		shorten(r.Buyer),
		shorten(r.Seller),
		r.URL,
	)
}

func FormatSweep(collectionName string, r *models.SweepRecord) string {
	return fmt.Sprintf("%d %s swept for %s%s (%s) %s",
		r.Count,
		collectionName,
		r.Price,
		r.Symbol,
		r.USDPrice,
		r.URL,
	)
}

func shorten(address string) string {
	if len(address) <= shortAddressLength {
		return address
	}
	return address[:shortAddressLength]
}
