package tokenmeta

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20StringABI = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

// Some early tokens (MKR, SAI) return symbol as bytes32.
const erc20Bytes32ABI = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	abiOnce     sync.Once
	stringABI   abi.ABI
	bytes32ABI  abi.ABI
	abiParseErr error
)

func erc20ABIs() (abi.ABI, abi.ABI, error) {
	abiOnce.Do(func() {
		stringABI, abiParseErr = abi.JSON(strings.NewReader(erc20StringABI))
		if abiParseErr != nil {
			return
		}
		bytes32ABI, abiParseErr = abi.JSON(strings.NewReader(erc20Bytes32ABI))
	})
	return stringABI, bytes32ABI, abiParseErr
}
