package fetcher

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/txplain-labs/txplain/internal/logger"
	"github.com/txplain-labs/txplain/internal/tests"
	"github.com/txplain-labs/txplain/pkg/clients/ethereum"
	"github.com/txplain-labs/txplain/pkg/providerPool"
)

const (
	primaryUrl   = "http://primary-node.test:8545"
	secondaryUrl = "http://secondary-node.test:8545"

	txHash = "0x5c7d2a91dd3b9f3ac45d2f62b2e34fa80e67d43b8f1e54d9f5fa1b64e2b13c77"
)

func newTestFetcher(t *testing.T) *Fetcher {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	clients := make([]*ethereum.Client, 0)
	for _, url := range []string{primaryUrl, secondaryUrl} {
		clients = append(clients, ethereum.NewClient(&ethereum.EthereumClientConfig{
			BaseUrl:    url,
			HttpClient: &http.Client{Transport: httpmock.DefaultTransport},
		}, l))
	}
	return NewFetcher(providerPool.NewProviderPool(clients, nil, l), l)
}

const minedTransaction = `{
	"hash": "0x5c7d2a91dd3b9f3ac45d2f62b2e34fa80e67d43b8f1e54d9f5fa1b64e2b13c77",
	"from": "0x1111111111111111111111111111111111111111",
	"to": "0x2222222222222222222222222222222222222222",
	"input": "0x",
	"value": "0xde0b6b3a7640000",
	"blockNumber": "0x200"
}`

func Test_Fetcher(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	f := newTestFetcher(t)

	t.Run("transaction with missing receipt is still indexing", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("POST", primaryUrl, tests.JsonRpcResponder(map[string]string{
			"eth_blockNumber":           `"0x300"`,
			"eth_getTransactionByHash":  minedTransaction,
			"eth_getTransactionReceipt": `null`,
		}))
		httpmock.RegisterResponder("POST", secondaryUrl, tests.JsonRpcResponder(map[string]string{
			"eth_blockNumber":           `"0x300"`,
			"eth_getTransactionByHash":  minedTransaction,
			"eth_getTransactionReceipt": `null`,
		}))

		fetched, err := f.FetchTransaction(context.Background(), txHash)
		assert.Nil(t, err)
		assert.NotNil(t, fetched.Transaction)
		assert.Nil(t, fetched.Receipt)
		assert.True(t, fetched.IsMined())
	})

	t.Run("unknown transaction is not an error", func(t *testing.T) {
		httpmock.Reset()
		responder := tests.JsonRpcResponder(map[string]string{
			"eth_blockNumber":           `"0x300"`,
			"eth_getTransactionByHash":  `null`,
			"eth_getTransactionReceipt": `null`,
		})
		httpmock.RegisterResponder("POST", primaryUrl, responder)
		httpmock.RegisterResponder("POST", secondaryUrl, responder)

		fetched, err := f.FetchTransaction(context.Background(), txHash)
		assert.Nil(t, err)
		assert.Nil(t, fetched.Transaction)
		assert.Nil(t, fetched.Receipt)
		assert.False(t, fetched.IsMined())
	})

	t.Run("receipt can come from a different provider than the body", func(t *testing.T) {
		httpmock.Reset()
		// primary probe fails, secondary serves both reads
		httpmock.RegisterResponder("POST", primaryUrl, httpmock.NewStringResponder(502, "bad gateway"))
		httpmock.RegisterResponder("POST", secondaryUrl, tests.JsonRpcResponder(map[string]string{
			"eth_blockNumber":          `"0x300"`,
			"eth_getTransactionByHash": minedTransaction,
			"eth_getTransactionReceipt": `{
				"transactionHash": "0x5c7d2a91dd3b9f3ac45d2f62b2e34fa80e67d43b8f1e54d9f5fa1b64e2b13c77",
				"status": "0x1",
				"blockNumber": "0x200",
				"gasUsed": "0x5208",
				"effectiveGasPrice": "0x3b9aca00",
				"logs": []
			}`,
		}))

		fetched, err := f.FetchTransaction(context.Background(), txHash)
		assert.Nil(t, err)
		assert.NotNil(t, fetched.Transaction)
		assert.NotNil(t, fetched.Receipt)
	})

	t.Run("pool exhaustion on both reads is a recoverable error", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("POST", primaryUrl, httpmock.NewStringResponder(502, "bad gateway"))
		httpmock.RegisterResponder("POST", secondaryUrl, httpmock.NewStringResponder(502, "bad gateway"))

		_, err := f.FetchTransaction(context.Background(), txHash)
		assert.NotNil(t, err)
		assert.True(t, providerPool.IsAllProvidersUnavailable(err))
	})
}
