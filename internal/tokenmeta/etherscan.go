package tokenmeta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/6529-Collections/salesbot/pkg/sales/models"
	"github.com/ethereum/go-ethereum/common"
)

// EtherscanLookup reads token metadata from the most recent token transfer
// indexed by Etherscan for the contract.
type EtherscanLookup struct {
	apiUrl     string
	apiKey     string
	httpClient *http.Client
}

type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type etherscanTokenTx struct {
	TokenSymbol  string `json:"tokenSymbol"`
	TokenDecimal string `json:"tokenDecimal"`
}

func NewEtherscanLookup(apiUrl, apiKey string, httpClient *http.Client) *EtherscanLookup {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &EtherscanLookup{
		apiUrl:     strings.TrimRight(apiUrl, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (e *EtherscanLookup) TokenMeta(ctx context.Context, token common.Address) (models.TokenMeta, error) {
	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", "tokentx")
	query.Set("contractaddress", token.Hex())
	query.Set("page", "1")
	query.Set("offset", "1")
	query.Set("apiKey", e.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.apiUrl+"?"+query.Encode(), nil)
	if err != nil {
		return models.TokenMeta{}, fmt.Errorf("failed to build etherscan request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return models.TokenMeta{}, fmt.Errorf("etherscan request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.TokenMeta{}, fmt.Errorf("etherscan returned status %d", resp.StatusCode)
	}

	var body etherscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.TokenMeta{}, fmt.Errorf("failed to decode etherscan response: %w", err)
	}
	var txs []etherscanTokenTx
	if err := json.Unmarshal(body.Result, &txs); err != nil {
		// Errors come back as a plain string result.
		return models.TokenMeta{}, fmt.Errorf("etherscan error %q: %s", body.Message, string(body.Result))
	}
	if len(txs) == 0 {
		return models.TokenMeta{}, fmt.Errorf("%w: %s", ErrTokenNotFound, token.Hex())
	}

	decimals, err := strconv.ParseUint(txs[0].TokenDecimal, 10, 8)
	if err != nil {
		return models.TokenMeta{}, fmt.Errorf("invalid tokenDecimal %q: %w", txs[0].TokenDecimal, err)
	}
	return models.TokenMeta{
		Symbol:   txs[0].TokenSymbol,
		Decimals: uint8(decimals),
	}, nil
}
