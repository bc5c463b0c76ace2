package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var defaultCoinGeckoIds = map[string]string{
	"ETH":  "ethereum",
	"WETH": "weth",
	"USDC": "usd-coin",
	"USDT": "tether",
	"DAI":  "dai",
	"APE":  "apecoin",
	"BLUR": "blur",
}

type CoinGeckoConverter struct {
	apiUrl     string
	ids        map[string]string
	httpClient *http.Client
}

// NewCoinGeckoConverter merges the SYMBOL=id pairs of idOverrides over the
// built-in ids.
func NewCoinGeckoConverter(apiUrl, idOverrides string, httpClient *http.Client) *CoinGeckoConverter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	ids := make(map[string]string, len(defaultCoinGeckoIds))
	for symbol, id := range defaultCoinGeckoIds {
		ids[symbol] = id
	}
	for _, pair := range strings.Split(idOverrides, ",") {
		symbol, id, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || symbol == "" || id == "" {
			if strings.TrimSpace(pair) != "" {
				zap.L().Warn("Ignoring malformed CoinGecko id mapping", zap.String("pair", pair))
			}
			continue
		}
		ids[strings.ToUpper(strings.TrimSpace(symbol))] = strings.TrimSpace(id)
	}
	return &CoinGeckoConverter{
		apiUrl:     strings.TrimRight(apiUrl, "/"),
		ids:        ids,
		httpClient: httpClient,
	}
}

// CoinGeckoId falls back to the lower cased symbol for unmapped tokens.
func (c *CoinGeckoConverter) CoinGeckoId(symbol string) string {
	if id, ok := c.ids[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

func (c *CoinGeckoConverter) USDPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	id := c.CoinGeckoId(symbol)
	query := url.Values{}
	query.Set("ids", id)
	query.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiUrl+"/simple/price?"+query.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrFiatLookup, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrFiatLookup, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: coingecko returned status %d", ErrFiatLookup, resp.StatusCode)
	}

	var prices map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&prices); err != nil {
		return decimal.Zero, fmt.Errorf("%w: failed to decode coingecko response: %v", ErrFiatLookup, err)
	}
	usd, ok := prices[id]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no usd price for %s (%s)", ErrFiatLookup, symbol, id)
	}
	return usd, nil
}
