package eth

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type SaleKind string

const (
	SINGLE_SALE SaleKind = "SALE"
	SWEEP       SaleKind = "SWEEP"
)

// SaleClassifier tells a single sale apart from a sweep by counting the
// collection tokens the transaction sender received.
type SaleClassifier interface {
	CountTokensMoved(logs []*types.Log, collection, sender common.Address) int
	Classify(count int) (SaleKind, int)
}

type DefaultSaleClassifier struct{}

func NewDefaultSaleClassifier() *DefaultSaleClassifier {
	return &DefaultSaleClassifier{}
}

func (DefaultSaleClassifier) CountTokensMoved(logs []*types.Log, collection, sender common.Address) int {
	count := 0
	for _, lg := range logs {
		if lg == nil || !isTransferLog(lg) || lg.Address != collection || len(lg.Data) != 0 || len(lg.Topics) < 3 {
			continue
		}
		recipient, err := DecodeAddressWord(lg.Topics[2])
		if err != nil {
			continue
		}
		if recipient == sender {
			count++
		}
	}
	return count
}

// Classify returns the sale kind and the token count to report. A count of
// zero happens when the tokens went to someone other than the sender and is
// reported as one.
func (DefaultSaleClassifier) Classify(count int) (SaleKind, int) {
	if count <= 1 {
		return SINGLE_SALE, 1
	}
	return SWEEP, count
}
