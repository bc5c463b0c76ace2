package eth

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
)

func addressToTopic(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

func nftTransferLog(collection, from, to common.Address, tokenId int64) *types.Log {
	return &types.Log{
		Address: collection,
		Topics: []common.Hash{
			transferSig,
			addressToTopic(from),
			addressToTopic(to),
			common.BigToHash(big.NewInt(tokenId)),
		},
	}
}

func erc20TransferLog(token, from, to common.Address, amount *big.Int) *types.Log {
	return &types.Log{
		Address: token,
		Topics: []common.Hash{
			transferSig,
			addressToTopic(from),
			addressToTopic(to),
		},
		Data: common.LeftPadBytes(amount.Bytes(), 32),
	}
}

func TestDefaultSaleClassifier(t *testing.T) {
	collection := common.HexToAddress("0x33fd426905f149f8376e227d0c9d3340aad17af1")
	otherNft := common.HexToAddress("0x0c58ef43ff3032005e472cb5709f8908acb00205")
	weth := common.HexToAddress("0xC02aaa39b223Fe8D0a0e5C4F27eAD9083C756Cc2")
	seller := common.HexToAddress("0x5e11e7")
	sender := common.HexToAddress("0xb0b")
	classifier := NewDefaultSaleClassifier()

	t.Run("counts collection transfers to the sender", func(t *testing.T) {
		logs := []*types.Log{
			nftTransferLog(collection, seller, sender, 1),
			nftTransferLog(collection, seller, sender, 2),
			nftTransferLog(collection, seller, sender, 3),
		}
		assert.Equal(t, 3, classifier.CountTokensMoved(logs, collection, sender))
	})

	t.Run("ignores other recipients, contracts and payments", func(t *testing.T) {
		logs := []*types.Log{
			nftTransferLog(collection, seller, sender, 1),
			nftTransferLog(collection, seller, common.HexToAddress("0xdead"), 2),
			nftTransferLog(otherNft, seller, sender, 3),
			erc20TransferLog(weth, sender, seller, big.NewInt(10)),
			{Address: collection, Topics: []common.Hash{common.HexToHash("0x01")}},
			nil,
		}
		assert.Equal(t, 1, classifier.CountTokensMoved(logs, collection, sender))
	})

	t.Run("undecodable recipient counts as non matching", func(t *testing.T) {
		lg := nftTransferLog(collection, seller, sender, 1)
		lg.Topics[2][0] = 0xff
		assert.Equal(t, 0, classifier.CountTokensMoved([]*types.Log{lg}, collection, sender))
	})

	t.Run("single versus sweep boundary", func(t *testing.T) {
		kind, count := classifier.Classify(0)
		assert.Equal(t, SINGLE_SALE, kind)
		assert.Equal(t, 1, count)

		kind, count = classifier.Classify(1)
		assert.Equal(t, SINGLE_SALE, kind)
		assert.Equal(t, 1, count)

		kind, count = classifier.Classify(2)
		assert.Equal(t, SWEEP, kind)
		assert.Equal(t, 2, count)
	})
}
