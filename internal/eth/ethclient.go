package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/6529-Collections/salesbot/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var CreateEthClient = createEthClient

var (
	ErrLookup             = errors.New("chain lookup failed")
	ErrDecode             = errors.New("malformed abi word")
	ErrSubscriptionFailed = errors.New("transfer subscription failed")
)

type EthClient interface {
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

func createEthClient() (EthClient, error) {
	nodeUrl := config.Get().EthereumNodeUrl
	if nodeUrl == "" {
		return nil, errors.New("failed to configure Ethereum client - EthereumNodeUrl is not set")
	}
	client, err := ethclient.Dial(nodeUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to configure Ethereum client - %w", err)
	}
	return client, nil
}
