// Package reputation implements the deployer-reputation collaborator against
// an Etherscan-compatible explorer API. Every failure path degrades: the
// engine treats an unavailable provider as "no reputation findings", never as
// a failed analysis.
package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"riskscan/internal/analysis"
)

const DefaultBaseURL = "https://api.basescan.org/api"

// Wallets that appear in public bad-actor lists. A deployer matching one of
// these is flagged outright.
var flaggedWallets = map[common.Address]struct{}{
	// Tornado Cash router
	common.HexToAddress("0xd90e2f925DA726b50C4Ed8D0Fb90Ad053324F31b"): {},
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Lookup resolves the deployer of a contract and summarizes its history.
// Returns ErrReputationUnavailable when no API key is configured or the
// upstream cannot be reached at all.
func (c *Client) Lookup(ctx context.Context, contract common.Address) (*analysis.DeployerProfile, error) {
	if c.apiKey == "" {
		return nil, analysis.ErrReputationUnavailable
	}

	creator, ok, err := c.contractCreator(ctx, contract)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrReputationUnavailable, err)
	}
	if !ok {
		return &analysis.DeployerProfile{Found: false}, nil
	}

	prof := &analysis.DeployerProfile{
		Deployer: creator,
		Found:    true,
		// Unknown age and activity stay above the risk thresholds so a
		// partially failed lookup adds no findings.
		AgeDays: 365,
		TxCount: 1 << 30,
	}
	if _, flagged := flaggedWallets[creator]; flagged {
		prof.Flagged = true
	}

	if ts, ok := c.firstTxTimestamp(ctx, creator); ok {
		prof.AgeDays = time.Since(time.Unix(ts, 0)).Hours() / 24
	}
	if n, ok := c.txCount(ctx, creator); ok {
		prof.TxCount = n
	}
	return prof, nil
}

// contractCreator resolves who deployed the contract. ok=false with nil error
// means the explorer answered but does not know the creator.
func (c *Client) contractCreator(ctx context.Context, contract common.Address) (common.Address, bool, error) {
	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getcontractcreation")
	params.Set("contractaddresses", contract.Hex())

	var result []struct {
		ContractCreator string `json:"contractCreator"`
		TxHash          string `json:"txHash"`
	}
	ok, err := c.call(ctx, params, &result)
	if err != nil {
		return common.Address{}, false, err
	}
	if !ok || len(result) == 0 || !common.IsHexAddress(result[0].ContractCreator) {
		return common.Address{}, false, nil
	}
	return common.HexToAddress(result[0].ContractCreator), true, nil
}

// firstTxTimestamp fetches the timestamp of the deployer's earliest
// transaction, a proxy for wallet age.
func (c *Client) firstTxTimestamp(ctx context.Context, deployer common.Address) (int64, bool) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", deployer.Hex())
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("page", "1")
	params.Set("offset", "1")
	params.Set("sort", "asc")

	var result []struct {
		TimeStamp string `json:"timeStamp"`
	}
	ok, err := c.call(ctx, params, &result)
	if err != nil || !ok || len(result) == 0 {
		return 0, false
	}
	ts, err := strconv.ParseInt(result[0].TimeStamp, 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// txCount fetches the deployer's total transaction count via the explorer's
// eth_getTransactionCount passthrough.
func (c *Client) txCount(ctx context.Context, deployer common.Address) (int, bool) {
	params := url.Values{}
	params.Set("module", "proxy")
	params.Set("action", "eth_getTransactionCount")
	params.Set("address", deployer.Hex())
	params.Set("tag", "latest")

	req, err := c.newRequest(ctx, params)
	if err != nil {
		return 0, false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	var payload struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(payload.Result, 0, 64)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// call performs one explorer API request and decodes the result field.
// ok=false means the API answered with a non-success status (no data).
func (c *Client) call(ctx context.Context, params url.Values, out interface{}) (bool, error) {
	req, err := c.newRequest(ctx, params)
	if err != nil {
		return false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("explorer request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return false, fmt.Errorf("explorer returned invalid JSON: %w", err)
	}
	if apiResp.Status != "1" {
		return false, nil
	}
	if err := json.Unmarshal(apiResp.Result, out); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *Client) newRequest(ctx context.Context, params url.Values) (*http.Request, error) {
	params.Set("apikey", c.apiKey)
	return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
}
