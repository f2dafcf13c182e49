package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bgbahoue/yaxis-bot/internal/model"
)

// Config holds settings for the Etherscan API client.
type Config struct {
	BaseURL string
	APIKey  string
	Page    int
	Offset  int
}

// Client fetches token transfer events from the Etherscan account API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.Page <= 0 {
		cfg.Page = 1
	}
	if cfg.Offset <= 0 {
		cfg.Offset = 100
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// envelope is the outer Etherscan API response. Result stays raw because
// its shape depends on status: a record list on success, a message
// string on failure.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// tokenTxRecord mirrors one entry of the tokentx result list. Etherscan
// encodes every number as a string.
type tokenTxRecord struct {
	Hash            string `json:"hash"`
	TimeStamp       string `json:"timeStamp"`
	BlockNumber     string `json:"blockNumber"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractAddress string `json:"contractAddress"`
	Value           string `json:"value"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
}

// TokenTransfers returns all token transfer events for an address with
// block number >= startBlock, in ascending block order. "No transactions
// found" is normalized to an empty slice, not an error.
func (c *Client) TokenTransfers(ctx context.Context, address string, startBlock uint64) ([]model.TransferEvent, error) {
	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", "tokentx")
	query.Set("address", address)
	query.Set("startblock", strconv.FormatUint(startBlock, 10))
	query.Set("endblock", "latest")
	query.Set("page", strconv.Itoa(c.cfg.Page))
	query.Set("offset", strconv.Itoa(c.cfg.Offset))
	query.Set("sort", "asc")
	if c.cfg.APIKey != "" {
		query.Set("apikey", c.cfg.APIKey)
	}

	requestURL := c.cfg.BaseURL + "/api?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch token transfers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.cfg.BaseURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if env.Status != "1" {
		if env.Message == "No transactions found" {
			return nil, nil
		}
		return nil, fmt.Errorf("etherscan error: %s", env.Message)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(env.Result, &raws); err != nil {
		return nil, fmt.Errorf("decode result list: %w", err)
	}

	events := make([]model.TransferEvent, 0, len(raws))
	for _, raw := range raws {
		event, err := parseRecord(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func parseRecord(raw json.RawMessage) (model.TransferEvent, error) {
	var rec tokenTxRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.TransferEvent{}, fmt.Errorf("decode record: %w", err)
	}

	timestamp, err := strconv.ParseInt(rec.TimeStamp, 10, 64)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("parse timeStamp %q: %w", rec.TimeStamp, err)
	}
	blockNumber, err := strconv.ParseUint(rec.BlockNumber, 10, 64)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("parse blockNumber %q: %w", rec.BlockNumber, err)
	}
	tokenDecimal, err := strconv.ParseInt(rec.TokenDecimal, 10, 32)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("parse tokenDecimal %q: %w", rec.TokenDecimal, err)
	}

	return model.TransferEvent{
		Hash:            rec.Hash,
		Timestamp:       timestamp,
		BlockNumber:     blockNumber,
		From:            rec.From,
		To:              rec.To,
		ContractAddress: rec.ContractAddress,
		Value:           rec.Value,
		TokenName:       rec.TokenName,
		TokenSymbol:     rec.TokenSymbol,
		TokenDecimal:    int32(tokenDecimal),
		Payload:         raw,
	}, nil
}
