package tokenmeta

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ChainLookup reads symbol() and decimals() straight from the token contract.
type ChainLookup struct {
	caller ContractCaller
}

func NewChainLookup(caller ContractCaller) *ChainLookup {
	return &ChainLookup{caller: caller}
}

func (c *ChainLookup) TokenMeta(ctx context.Context, token common.Address) (models.TokenMeta, error) {
	strABI, b32ABI, err := erc20ABIs()
	if err != nil {
		return models.TokenMeta{}, fmt.Errorf("parse erc20 abi: %w", err)
	}

	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		data, err := parsed.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		resp, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		values, err := parsed.Unpack(method, resp)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", method, err)
		}
		return values, nil
	}

	values, err := call("decimals", strABI)
	if err != nil {
		return models.TokenMeta{}, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return models.TokenMeta{}, fmt.Errorf("unexpected decimals type %T", values[0])
	}
	meta := models.TokenMeta{Decimals: decimals}

	if values, err := call("symbol", strABI); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := call("symbol", b32ABI); err == nil {
		if raw, ok := values[0].([32]byte); ok {
			meta.Symbol = string(bytes.TrimRight(raw[:], "\x00"))
		}
	} else {
		return models.TokenMeta{}, fmt.Errorf("%w: %s symbol: %w", ErrTokenNotFound, token.Hex(), err)
	}
	if meta.Symbol == "" {
		return models.TokenMeta{}, fmt.Errorf("%w: %s has an empty symbol", ErrTokenNotFound, token.Hex())
	}
	return meta, nil
}
