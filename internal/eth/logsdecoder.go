package eth

import (
	"fmt"
	"math/big"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Shared by ERC-20 and ERC-721: only the number of indexed params differs.
var transferSig = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

var uint256Args abi.Arguments

func init() {
	uint256Type, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic("failed to build uint256 abi type")
	}
	uint256Args = abi.Arguments{{Type: uint256Type}}
}

// DecodeAddressWord reads an address from a left padded 32 byte word.
func DecodeAddressWord(word common.Hash) (common.Address, error) {
	for _, b := range word[:common.HashLength-common.AddressLength] {
		if b != 0 {
			return common.Address{}, fmt.Errorf("%w: %s is not an address word", ErrDecode, word.Hex())
		}
	}
	return common.BytesToAddress(word[common.HashLength-common.AddressLength:]), nil
}

// DecodeUintWord reads a uint256 from abi encoded log data.
func DecodeUintWord(data []byte) (*big.Int, error) {
	values, err := uint256Args.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected uint256 type %T", ErrDecode, values[0])
	}
	return value, nil
}

func isTransferLog(lg *types.Log) bool {
	return len(lg.Topics) > 0 && lg.Topics[0] == transferSig
}

// DecodeTransferEvent decodes an ERC-721 Transfer(from, to, tokenId) log.
func DecodeTransferEvent(lg types.Log) (models.TransferEvent, error) {
	if !isTransferLog(&lg) || len(lg.Topics) != 4 {
		return models.TransferEvent{}, fmt.Errorf("%w: log %d of tx %s is not an ERC-721 Transfer", ErrDecode, lg.Index, lg.TxHash.Hex())
	}
	from, err := DecodeAddressWord(lg.Topics[1])
	if err != nil {
		return models.TransferEvent{}, err
	}
	to, err := DecodeAddressWord(lg.Topics[2])
	if err != nil {
		return models.TransferEvent{}, err
	}
	return models.TransferEvent{
		TxHash:      lg.TxHash,
		TokenID:     new(big.Int).SetBytes(lg.Topics[3].Bytes()),
		From:        from,
		To:          to,
		BlockNumber: lg.BlockNumber,
		BlockHash:   lg.BlockHash,
		LogIndex:    lg.Index,
		Removed:     lg.Removed,
	}, nil
}
