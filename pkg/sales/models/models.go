package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// TransferEvent is one ERC-721 Transfer of the watched collection.
type TransferEvent struct {
	TxHash      common.Hash
	TokenID     *big.Int
	From        common.Address
	To          common.Address
	BlockNumber uint64
	BlockHash   common.Hash
	LogIndex    uint
	Removed     bool
}

// TxContext bundles what the pipeline needs from a transaction and its receipt.
type TxContext struct {
	Hash  common.Hash
	To    *common.Address
	From  common.Address
	Value *big.Int
	Logs  []*types.Log
}

type PaymentInfo struct {
	Symbol string
	Price  decimal.Decimal
}

type TokenMeta struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type Price struct {
	Total      decimal.Decimal
	Symbol     string
	USD        decimal.Decimal
	Display    string
	USDDisplay string
}

type SaleRecord struct {
	TokenID  string
	Price    string
	Symbol   string
	USDPrice string
	Buyer    string
	Seller   string
	URL      string
}

type SweepRecord struct {
	Count    int
	Price    string
	Symbol   string
	USDPrice string
	URL      string
}

// Record is either a *SaleRecord or a *SweepRecord.
type Record interface {
	isRecord()
}

func (*SaleRecord) isRecord()  {}
func (*SweepRecord) isRecord() {}
