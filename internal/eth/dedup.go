package eth

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DedupGuard drops repeated deliveries of the same transaction, e.g. one
// Transfer log per token of a sweep.
type DedupGuard interface {
	ShouldProcess(txHash common.Hash) bool
}

type LruDedupGuard struct {
	seen *lru.Cache[common.Hash, struct{}]
}

func NewDedupGuard(capacity int) (*LruDedupGuard, error) {
	cache, err := lru.New[common.Hash, struct{}](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedup cache: %w", err)
	}
	return &LruDedupGuard{seen: cache}, nil
}

func (g *LruDedupGuard) ShouldProcess(txHash common.Hash) bool {
	found, _ := g.seen.ContainsOrAdd(txHash, struct{}{})
	return !found
}
