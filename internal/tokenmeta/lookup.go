package tokenmeta

import (
	"context"
	"errors"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum/common"
)

var ErrTokenNotFound = errors.New("token metadata not found")

// Lookup resolves the display symbol and decimals of a fungible token.
type Lookup interface {
	TokenMeta(ctx context.Context, token common.Address) (models.TokenMeta, error)
}
