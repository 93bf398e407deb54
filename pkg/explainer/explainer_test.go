package explainer

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/txplain-labs/txplain/internal/config"
	"github.com/txplain-labs/txplain/internal/logger"
	"github.com/txplain-labs/txplain/internal/tests"
	"github.com/txplain-labs/txplain/pkg/clients/ethereum"
	"github.com/txplain-labs/txplain/pkg/fetcher"
	"github.com/txplain-labs/txplain/pkg/logClassifier"
	"github.com/txplain-labs/txplain/pkg/paymentVerifier"
	"github.com/txplain-labs/txplain/pkg/providerPool"
)

const (
	testProviderUrl = "http://explainer-provider.test:8545"

	testTxHash    = "0x8a1f0c2b7de34fa80e67d43b8f1e54d9f5fa1b64e2b13c775c7d2a91dd3b9f3a"
	testRecipient = "0x9fe46736679d2d9a65f0992f2272de9f3c7fa6e0"
	testToken     = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	testSender    = "0x1111111111111111111111111111111111111111"
)

func newTestExplainer(t *testing.T) *Explainer {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	client := ethereum.NewClient(&ethereum.EthereumClientConfig{
		BaseUrl:    testProviderUrl,
		HttpClient: &http.Client{Transport: httpmock.DefaultTransport},
	}, l)
	pool := providerPool.NewProviderPool([]*ethereum.Client{client}, nil, l)

	cfg := &config.Config{
		Chain: config.Chain_Mainnet,
		PaymentConfig: config.PaymentConfig{
			RecipientAddress:     testRecipient,
			TokenAddress:         testToken,
			RequiredAmount:       big.NewInt(1_000_000),
			MinimumConfirmations: 1,
		},
	}
	f := fetcher.NewFetcher(pool, l)
	pv := paymentVerifier.NewPaymentVerifier(pool, cfg, nil, l)
	return NewExplainer(f, pv, cfg, nil, l)
}

func ethTransferResponders() map[string]string {
	return map[string]string{
		"eth_blockNumber": `"0x105"`,
		"eth_chainId":     `"0x1"`,
		"eth_getTransactionByHash": fmt.Sprintf(`{
			"hash": "%s",
			"from": "%s",
			"to": "%s",
			"input": "0x",
			"value": "0xde0b6b3a7640000",
			"blockNumber": "0x100"
		}`, testTxHash, testSender, testRecipient),
		"eth_getTransactionReceipt": fmt.Sprintf(`{
			"transactionHash": "%s",
			"status": "0x1",
			"blockNumber": "0x100",
			"gasUsed": "0x5208",
			"effectiveGasPrice": "0x4a817c800",
			"logs": []
		}`, testTxHash),
	}
}

func paidTransactionResponders() map[string]string {
	transferLog := fmt.Sprintf(`{
		"address": "%s",
		"topics": ["%s", "%s", "%s"],
		"data": "0x00000000000000000000000000000000000000000000000000000000000f4240",
		"blockNumber": "0x100",
		"logIndex": "0x0",
		"transactionHash": "%s",
		"removed": false
	}`, testToken, logClassifier.TransferEventSignature.Hex(), logClassifier.RecipientTopic(testSender), logClassifier.RecipientTopic(testRecipient), testTxHash)

	return map[string]string{
		"eth_blockNumber": `"0x105"`,
		"eth_chainId":     `"0x1"`,
		"eth_getTransactionByHash": fmt.Sprintf(`{
			"hash": "%s",
			"from": "%s",
			"to": "%s",
			"input": "0xa9059cbb",
			"value": "0x0",
			"blockNumber": "0x100"
		}`, testTxHash, testSender, testToken),
		"eth_getTransactionReceipt": fmt.Sprintf(`{
			"transactionHash": "%s",
			"status": "0x1",
			"blockNumber": "0x100",
			"gasUsed": "0xc350",
			"effectiveGasPrice": "0x3b9aca00",
			"logs": [%s]
		}`, testTxHash, transferLog),
	}
}

func Test_Explain(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	t.Run("returns a placeholder for a malformed hash without touching the network", func(t *testing.T) {
		httpmock.Reset()
		e := newTestExplainer(t)
		callCountBefore := httpmock.GetTotalCallCount()

		result := e.Explain(context.Background(), "0x123", "")
		assert.Equal(t, Summary_InvalidHash, result.Summary)
		assert.False(t, result.Unlocked)
		assert.Equal(t, callCountBefore, httpmock.GetTotalCallCount())
	})

	t.Run("classifies a plain ETH transfer", func(t *testing.T) {
		httpmock.Reset()
		e := newTestExplainer(t)
		httpmock.RegisterResponder("POST", testProviderUrl, tests.JsonRpcResponder(ethTransferResponders()))

		result := e.Explain(context.Background(), testTxHash, "")
		assert.Equal(t, logClassifier.Kind_EthTransfer, result.Summary)
		assert.Equal(t, "0.000420 ETH", result.Fee)
		assert.Contains(t, result.ExplorerURL, testTxHash)
		assert.False(t, result.Unlocked)
		assert.Contains(t, result.Lines, "Value: 1.000000 ETH")
	})

	t.Run("unlocks only when a confirmed payment reference is supplied", func(t *testing.T) {
		httpmock.Reset()
		e := newTestExplainer(t)
		httpmock.RegisterResponder("POST", testProviderUrl, tests.JsonRpcResponder(paidTransactionResponders()))

		result := e.Explain(context.Background(), testTxHash, testTxHash)
		assert.True(t, result.Unlocked)
		assert.Equal(t, logClassifier.Kind_ContractInteraction, result.Summary)
	})

	t.Run("stays locked without a payment reference even when a qualifying payment exists", func(t *testing.T) {
		httpmock.Reset()
		e := newTestExplainer(t)
		httpmock.RegisterResponder("POST", testProviderUrl, tests.JsonRpcResponder(paidTransactionResponders()))

		result := e.Explain(context.Background(), testTxHash, "")
		assert.False(t, result.Unlocked)
	})

	t.Run("degrades gracefully when every provider is down", func(t *testing.T) {
		httpmock.Reset()
		e := newTestExplainer(t)
		httpmock.RegisterResponder("POST", testProviderUrl, httpmock.NewStringResponder(502, "bad gateway"))

		result := e.Explain(context.Background(), testTxHash, "")
		assert.Equal(t, Summary_Unavailable, result.Summary)
		assert.Contains(t, result.ExplorerURL, testTxHash)
		assert.False(t, result.Unlocked)
	})

	t.Run("reports an unknown hash as not found", func(t *testing.T) {
		httpmock.Reset()
		e := newTestExplainer(t)
		httpmock.RegisterResponder("POST", testProviderUrl, tests.JsonRpcResponder(map[string]string{
			"eth_blockNumber":           `"0x105"`,
			"eth_chainId":               `"0x1"`,
			"eth_getTransactionByHash":  `null`,
			"eth_getTransactionReceipt": `null`,
		}))

		result := e.Explain(context.Background(), testTxHash, "")
		assert.Equal(t, Summary_NotFound, result.Summary)
		assert.False(t, result.Unlocked)
	})
}
