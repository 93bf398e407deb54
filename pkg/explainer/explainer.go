// Package explainer assembles the human-readable explanation of a
// transaction. The explanation itself is always computed best-effort; only
// the Unlocked flag is gated, and its sole source of truth is server-side
// payment re-verification.
package explainer

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/txplain-labs/txplain/internal/config"
	"github.com/txplain-labs/txplain/internal/metrics"
	"github.com/txplain-labs/txplain/internal/metrics/metricsTypes"
	"github.com/txplain-labs/txplain/pkg/fetcher"
	"github.com/txplain-labs/txplain/pkg/logClassifier"
	"github.com/txplain-labs/txplain/pkg/paymentVerifier"
	"github.com/txplain-labs/txplain/pkg/utils"
	"go.uber.org/zap"
)

// Summary labels for requests that never reach a classified transaction.
const (
	Summary_InvalidHash = "Paste a valid transaction hash"
	Summary_NotFound    = "Transaction not found"
	Summary_Unavailable = "Can't load transaction details right now"
	Summary_Pending     = "Pending transaction"
)

// ExplanationResult is constructed per request and never persisted.
type ExplanationResult struct {
	Summary     string   `json:"summary"`
	Fee         string   `json:"fee"`
	Lines       []string `json:"lines"`
	ExplorerURL string   `json:"explorerUrl"`
	Unlocked    bool     `json:"unlocked"`
}

type Explainer struct {
	Logger *zap.Logger

	fetcher     *fetcher.Fetcher
	verifier    *paymentVerifier.PaymentVerifier
	chain       config.Chain
	metricsSink *metrics.MetricsSink
}

func NewExplainer(
	f *fetcher.Fetcher,
	pv *paymentVerifier.PaymentVerifier,
	cfg *config.Config,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) *Explainer {
	return &Explainer{
		Logger:      l,
		fetcher:     f,
		verifier:    pv,
		chain:       cfg.Chain,
		metricsSink: ms,
	}
}

// Explain builds the explanation for txHash. payTx is an optional payment
// reference; the unlock flag is true only when payTx was supplied and
// re-verifies as confirmed. No other input can set it. Explain never
// returns an error: unavailable chain data degrades into a placeholder
// result.
func (e *Explainer) Explain(ctx context.Context, txHash string, payTx string) *ExplanationResult {
	e.metricsSink.Incr(metricsTypes.Metric_Incr_ExplanationRequested, nil, 1)

	if !utils.IsValidTransactionHash(txHash) {
		return &ExplanationResult{
			Summary: Summary_InvalidHash,
			Fee:     logClassifier.FeeUnavailable,
		}
	}

	unlocked := e.resolveUnlock(ctx, payTx)
	explorerUrl := e.chain.ExplorerTxUrl(txHash)

	ft, err := e.fetcher.FetchTransaction(ctx, txHash)
	if err != nil {
		e.Logger.Sugar().Warnw("explanation degraded, no provider available",
			zap.String("transactionHash", txHash),
			zap.Error(err),
		)
		return &ExplanationResult{
			Summary:     Summary_Unavailable,
			Fee:         logClassifier.FeeUnavailable,
			Lines:       []string{"Every data provider is currently unreachable. Try again shortly."},
			ExplorerURL: explorerUrl,
			Unlocked:    unlocked,
		}
	}
	if ft.Transaction == nil && ft.Receipt == nil {
		return &ExplanationResult{
			Summary:     Summary_NotFound,
			Fee:         logClassifier.FeeUnavailable,
			Lines:       []string{"No provider has seen this hash. It may be unbroadcast or on a different network."},
			ExplorerURL: explorerUrl,
			Unlocked:    unlocked,
		}
	}

	return &ExplanationResult{
		Summary:     e.summarize(ft),
		Fee:         logClassifier.FormatFee(ft.Receipt),
		Lines:       e.describe(ft),
		ExplorerURL: explorerUrl,
		Unlocked:    unlocked,
	}
}

func (e *Explainer) resolveUnlock(ctx context.Context, payTx string) bool {
	if payTx == "" {
		return false
	}
	status, err := e.verifier.VerifyPayment(ctx, payTx)
	if err != nil {
		e.Logger.Sugar().Warnw("payment verification unavailable, keeping explanation locked",
			zap.Error(err),
		)
		return false
	}
	return status.State == paymentVerifier.PaymentState_Confirmed
}

func (e *Explainer) summarize(ft *fetcher.FetchedTransaction) string {
	if ft.Transaction != nil && !ft.IsMined() {
		return Summary_Pending
	}
	return logClassifier.ClassifyTransactionKind(ft.Transaction)
}

func (e *Explainer) describe(ft *fetcher.FetchedTransaction) []string {
	lines := make([]string, 0)

	if tx := ft.Transaction; tx != nil {
		if tx.To.Value() == "" {
			lines = append(lines, fmt.Sprintf("From %s, deploying a new contract", tx.From.Value()))
		} else {
			lines = append(lines, fmt.Sprintf("From %s to %s", tx.From.Value(), tx.To.Value()))
		}
		lines = append(lines, fmt.Sprintf("Value: %s ETH", formatWei(tx.Value.ToInt())))
		if !ft.IsMined() {
			lines = append(lines, "Not yet included in a block")
			return lines
		}
	}

	receipt := ft.Receipt
	if receipt == nil {
		lines = append(lines, "Mined, receipt not yet indexed by any provider")
		return lines
	}
	if !receipt.IsSuccessful() {
		lines = append(lines, "Execution reverted")
	}

	c := logClassifier.ClassifyReceiptLogs(receipt.Logs)
	lines = append(lines, fmt.Sprintf("Touched %d contract(s)", len(c.TouchedContracts)))
	if c.TransferCount > 0 {
		lines = append(lines, fmt.Sprintf("Token transfers: %d", c.TransferCount))
	}
	if c.ApprovalCount > 0 {
		lines = append(lines, fmt.Sprintf("Token approvals: %d", c.ApprovalCount))
	}
	lines = append(lines, fmt.Sprintf("Risk: %s", c.Risk))
	return lines
}

func formatWei(wei *big.Int) string {
	if wei == nil {
		wei = big.NewInt(0)
	}
	return decimal.NewFromBigInt(wei, -18).StringFixed(6)
}
