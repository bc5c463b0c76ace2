package eth

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

type MarketplaceClassifier interface {
	IsMarketplaceSale(txHash common.Hash, to *common.Address) bool
}

// AllowListClassifier accepts transactions sent directly to a known
// marketplace router.
type AllowListClassifier struct {
	routers map[common.Address]struct{}
}

func NewAllowListClassifier(addresses []string) *AllowListClassifier {
	routers := make(map[common.Address]struct{}, len(addresses))
	for _, addr := range addresses {
		routers[common.HexToAddress(addr)] = struct{}{}
	}
	return &AllowListClassifier{routers: routers}
}

func (c *AllowListClassifier) IsMarketplaceSale(txHash common.Hash, to *common.Address) bool {
	if to == nil {
		zap.L().Info("Non marketplace transfer", zap.String("txHash", txHash.Hex()), zap.String("to", "contract creation"))
		return false
	}
	if _, ok := c.routers[*to]; !ok {
		zap.L().Info("Non marketplace transfer", zap.String("txHash", txHash.Hex()), zap.String("to", to.Hex()))
		return false
	}
	return true
}
