package eth

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintData(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func TestDecodeAddressWord(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	t.Run("padded address", func(t *testing.T) {
		got, err := DecodeAddressWord(addressToTopic(addr))
		require.NoError(t, err)
		assert.Equal(t, addr, got)
	})

	t.Run("dirty high bytes", func(t *testing.T) {
		word := addressToTopic(addr)
		word[0] = 0x01
		_, err := DecodeAddressWord(word)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDecode))
	})

	t.Run("idempotent", func(t *testing.T) {
		first, err1 := DecodeAddressWord(addressToTopic(addr))
		second, err2 := DecodeAddressWord(addressToTopic(addr))
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, first, second)
	})
}

func TestDecodeUintWord(t *testing.T) {
	t.Run("one ether", func(t *testing.T) {
		oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)
		got, err := DecodeUintWord(uintData(oneEth))
		require.NoError(t, err)
		assert.Equal(t, 0, oneEth.Cmp(got))
	})

	t.Run("empty data", func(t *testing.T) {
		_, err := DecodeUintWord(nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDecode))
	})

	t.Run("short data", func(t *testing.T) {
		_, err := DecodeUintWord([]byte{0x01, 0x02})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDecode))
	})
}

func TestDecodeTransferEvent(t *testing.T) {
	fromAddr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	toAddr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	tokenId := big.NewInt(999)

	t.Run("ERC721 Transfer with 4 topics", func(t *testing.T) {
		lg := types.Log{
			Address:     common.HexToAddress("0x33fd426905f149f8376e227d0c9d3340aad17af1"),
			BlockNumber: 50,
			TxHash:      common.HexToHash("0x123"),
			Index:       7,
			Topics: []common.Hash{
				transferSig,
				addressToTopic(fromAddr),
				addressToTopic(toAddr),
				common.BigToHash(tokenId),
			},
		}
		ev, err := DecodeTransferEvent(lg)
		require.NoError(t, err)
		assert.Equal(t, fromAddr, ev.From)
		assert.Equal(t, toAddr, ev.To)
		assert.Equal(t, "999", ev.TokenID.String())
		assert.Equal(t, uint64(50), ev.BlockNumber)
		assert.Equal(t, uint(7), ev.LogIndex)
		assert.Equal(t, common.HexToHash("0x123"), ev.TxHash)
		assert.False(t, ev.Removed)
	})

	t.Run("removed flag is carried", func(t *testing.T) {
		lg := types.Log{
			Topics:  []common.Hash{transferSig, addressToTopic(fromAddr), addressToTopic(toAddr), common.BigToHash(tokenId)},
			Removed: true,
		}
		ev, err := DecodeTransferEvent(lg)
		require.NoError(t, err)
		assert.True(t, ev.Removed)
	})

	t.Run("ERC20 layout is rejected", func(t *testing.T) {
		lg := types.Log{
			Topics: []common.Hash{transferSig, addressToTopic(fromAddr), addressToTopic(toAddr)},
			Data:   uintData(big.NewInt(5)),
		}
		_, err := DecodeTransferEvent(lg)
		assert.True(t, errors.Is(err, ErrDecode))
	})

	t.Run("other signature is rejected", func(t *testing.T) {
		lg := types.Log{Topics: []common.Hash{common.HexToHash("0x01"), {}, {}, {}}}
		_, err := DecodeTransferEvent(lg)
		assert.True(t, errors.Is(err, ErrDecode))
	})
}
