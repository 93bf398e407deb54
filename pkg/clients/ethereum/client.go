// Package ethereum provides a minimal read-only JSON-RPC client for a
// single Ethereum node endpoint. Failover across endpoints lives in
// pkg/providerPool; this client talks to exactly one URL.
package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type EthereumClientConfig struct {
	BaseUrl string
	// HttpClient overrides the default client; tests inject one wired to
	// httpmock's transport.
	HttpClient *http.Client
}

type Client struct {
	BaseUrl    string
	Logger     *zap.Logger
	httpClient *http.Client
	idCounter  atomic.Uint64
}

func DefaultHttpClient() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
	}
}

func NewClient(cfg *EthereumClientConfig, l *zap.Logger) *Client {
	httpClient := cfg.HttpClient
	if httpClient == nil {
		httpClient = DefaultHttpClient()
	}
	return &Client{
		BaseUrl:    cfg.BaseUrl,
		Logger:     l,
		httpClient: httpClient,
	}
}

type RPCRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Id      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type RPCResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// call performs a single JSON-RPC request and returns the raw result.
// A JSON `null` result is returned as nil with no error; providers use it
// for "not found / not yet indexed".
func (c *Client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	rpcRequest := &RPCRequest{
		Jsonrpc: "2.0",
		Id:      c.idCounter.Add(1),
		Method:  method,
		Params:  params,
	}
	payload, err := json.Marshal(rpcRequest)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal rpc request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseUrl, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create http request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "rpc call '%s' failed", method)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.Logger.Sugar().Debugw("rpc call returned non-2xx status",
			zap.String("method", method),
			zap.Int("statusCode", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("rpc call '%s' returned status %d", method, resp.StatusCode)
	}

	var decoded RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.Wrap(err, "failed to decode rpc response")
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	if len(decoded.Result) == 0 || string(decoded.Result) == "null" {
		return nil, nil
	}
	return decoded.Result, nil
}

// GetChainId returns the network identifier of the connected node.
func (c *Client) GetChainId(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "eth_chainId", nil)
	if err != nil {
		return 0, err
	}
	var s string
	if err := json.Unmarshal(result, &s); err != nil {
		return 0, errors.Wrap(err, "failed to parse chain id")
	}
	return ParseHexUint64(s)
}

// GetBlockNumber returns the current head block height. It doubles as the
// liveness probe used by the provider pool.
func (c *Client) GetBlockNumber(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return 0, err
	}
	var s string
	if err := json.Unmarshal(result, &s); err != nil {
		return 0, errors.Wrap(err, "failed to parse block number")
	}
	return ParseHexUint64(s)
}

// GetTransactionByHash returns the transaction body, or nil if the node has
// not seen the hash.
func (c *Client) GetTransactionByHash(ctx context.Context, hash string) (*EthereumTransaction, error) {
	result, err := c.call(ctx, "eth_getTransactionByHash", []interface{}{hash})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	tx := &EthereumTransaction{}
	if err := json.Unmarshal(result, tx); err != nil {
		return nil, errors.Wrap(err, "failed to parse transaction")
	}
	return tx, nil
}

// GetTransactionReceipt returns the execution receipt, or nil if the
// transaction is not mined or the node has not indexed it yet.
func (c *Client) GetTransactionReceipt(ctx context.Context, hash string) (*EthereumTransactionReceipt, error) {
	result, err := c.call(ctx, "eth_getTransactionReceipt", []interface{}{hash})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	receipt := &EthereumTransactionReceipt{}
	if err := json.Unmarshal(result, receipt); err != nil {
		return nil, errors.Wrap(err, "failed to parse transaction receipt")
	}
	return receipt, nil
}

// GetLogs returns event logs matching the filter. An empty result is a
// valid answer, not an error.
func (c *Client) GetLogs(ctx context.Context, filter *LogFilter) ([]*EthereumEventLog, error) {
	result, err := c.call(ctx, "eth_getLogs", []interface{}{filter.toParams()})
	if err != nil {
		return nil, err
	}
	logs := make([]*EthereumEventLog, 0)
	if result == nil {
		return logs, nil
	}
	if err := json.Unmarshal(result, &logs); err != nil {
		return nil, errors.Wrap(err, "failed to parse logs")
	}
	return logs, nil
}
