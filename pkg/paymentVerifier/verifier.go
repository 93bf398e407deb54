// Package paymentVerifier re-derives the payment state of a transaction
// from chain data on every call. Nothing the client sends is trusted: the
// only source of truth for "amount paid" is the sum of token Transfer
// events credited to the configured recipient address.
package paymentVerifier

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/txplain-labs/txplain/internal/config"
	"github.com/txplain-labs/txplain/internal/metrics"
	"github.com/txplain-labs/txplain/internal/metrics/metricsTypes"
	"github.com/txplain-labs/txplain/pkg/clients/ethereum"
	"github.com/txplain-labs/txplain/pkg/logClassifier"
	"github.com/txplain-labs/txplain/pkg/providerPool"
	"github.com/txplain-labs/txplain/pkg/utils"
	"go.uber.org/zap"
)

type PaymentState string

const (
	PaymentState_Confirmed PaymentState = "CONFIRMED"
	PaymentState_Pending   PaymentState = "PENDING"
	PaymentState_NotFound  PaymentState = "NOT_FOUND"
	PaymentState_Failed    PaymentState = "FAILED"
)

// PaymentStatus is the recomputed state of a payment reference. There is no
// stored ledger; every verification starts from zero.
type PaymentStatus struct {
	State PaymentState
	// AmountPaid is the cumulative credited amount in the token's smallest
	// unit. Nil when no qualifying transfer was observed.
	AmountPaid *big.Int
	Message    string
}

type PaymentVerifier struct {
	Logger *zap.Logger

	pool          *providerPool.Pool
	paymentConfig *config.PaymentConfig
	chainId       uint64
	metricsSink   *metrics.MetricsSink
}

func NewPaymentVerifier(
	pool *providerPool.Pool,
	cfg *config.Config,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) *PaymentVerifier {
	return &PaymentVerifier{
		Logger:        l,
		pool:          pool,
		paymentConfig: &cfg.PaymentConfig,
		chainId:       cfg.Chain.ChainId(),
		metricsSink:   ms,
	}
}

// VerifyPayment resolves a payment reference to a PaymentStatus. The
// returned error is non-nil only when the provider pool was exhausted;
// every on-chain outcome, including terminal failures, is expressed as a
// status. Malformed references are rejected before any network call.
func (pv *PaymentVerifier) VerifyPayment(ctx context.Context, paymentRef string) (*PaymentStatus, error) {
	start := time.Now()
	status, err := pv.verifyPayment(ctx, paymentRef)
	pv.metricsSink.Timing(metricsTypes.Metric_Timing_PaymentVerificationDuration, time.Since(start), nil)
	if err != nil {
		return nil, err
	}
	pv.metricsSink.Incr(metricsTypes.Metric_Incr_PaymentVerification, []metricsTypes.MetricsLabel{
		{Name: "state", Value: string(status.State)},
	}, 1)
	return status, nil
}

func (pv *PaymentVerifier) verifyPayment(ctx context.Context, paymentRef string) (*PaymentStatus, error) {
	if !utils.IsValidTransactionHash(paymentRef) {
		return &PaymentStatus{
			State:   PaymentState_Failed,
			Message: "Invalid transaction hash format",
		}, nil
	}

	// The network identity check must pass before any receipt or log query
	// is issued. A payment on any other network never counts.
	chainId, err := providerPool.Read(ctx, pv.pool, "getChainId", func(ctx context.Context, client *ethereum.Client) (uint64, error) {
		return client.GetChainId(ctx)
	})
	if err != nil {
		return nil, err
	}
	if chainId != pv.chainId {
		pv.Logger.Sugar().Warnw("payment verification against wrong network",
			zap.Uint64("expectedChainId", pv.chainId),
			zap.Uint64("actualChainId", chainId),
		)
		return &PaymentStatus{
			State:   PaymentState_Failed,
			Message: "Connected to the wrong network",
		}, nil
	}

	receipt, err := providerPool.Read(ctx, pv.pool, "getTransactionReceipt", func(ctx context.Context, client *ethereum.Client) (*ethereum.EthereumTransactionReceipt, error) {
		return client.GetTransactionReceipt(ctx, paymentRef)
	})
	if err != nil {
		return nil, err
	}
	if receipt != nil {
		return pv.verifyFromReceipt(ctx, receipt)
	}
	return pv.verifyWithoutReceipt(ctx, paymentRef)
}

// verifyFromReceipt is the primary path, used whenever any provider has the
// receipt indexed.
func (pv *PaymentVerifier) verifyFromReceipt(ctx context.Context, receipt *ethereum.EthereumTransactionReceipt) (*PaymentStatus, error) {
	if !receipt.IsSuccessful() {
		return &PaymentStatus{
			State:   PaymentState_Failed,
			Message: "Payment transaction reverted",
		}, nil
	}

	confirmed, err := pv.hasEnoughConfirmations(ctx, receipt.BlockNumber.Value())
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return &PaymentStatus{
			State:   PaymentState_Pending,
			Message: "Waiting for confirmations",
		}, nil
	}

	amount := big.NewInt(0)
	for _, lg := range receipt.Logs {
		amount.Add(amount, pv.qualifyingAmount(lg, receipt.TransactionHash.Value()))
	}
	return pv.statusForAmount(amount), nil
}

// verifyWithoutReceipt is the fallback path for when no provider has the
// receipt yet. Providers may lag independently on receipt indexing versus
// transaction and raw log indexing, so a mined transaction without a
// reachable receipt is still resolvable through a log filter over its
// inclusion block.
func (pv *PaymentVerifier) verifyWithoutReceipt(ctx context.Context, paymentRef string) (*PaymentStatus, error) {
	tx, err := providerPool.Read(ctx, pv.pool, "getTransactionByHash", func(ctx context.Context, client *ethereum.Client) (*ethereum.EthereumTransaction, error) {
		return client.GetTransactionByHash(ctx, paymentRef)
	})
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return &PaymentStatus{
			State:   PaymentState_NotFound,
			Message: "Transaction not found",
		}, nil
	}
	if tx.IsPending() {
		return &PaymentStatus{
			State:   PaymentState_Pending,
			Message: "Transaction not yet mined",
		}, nil
	}

	inclusionBlock := tx.BlockNumber.Value()
	confirmed, err := pv.hasEnoughConfirmations(ctx, inclusionBlock)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return &PaymentStatus{
			State:   PaymentState_Pending,
			Message: "Waiting for confirmations",
		}, nil
	}

	filter := &ethereum.LogFilter{
		FromBlock: inclusionBlock,
		ToBlock:   inclusionBlock,
		Address:   pv.paymentConfig.TokenAddress,
		Topics: []string{
			logClassifier.TransferEventSignature.Hex(),
			"",
			logClassifier.RecipientTopic(pv.paymentConfig.RecipientAddress),
		},
	}
	logs, err := providerPool.Read(ctx, pv.pool, "getLogs", func(ctx context.Context, client *ethereum.Client) ([]*ethereum.EthereumEventLog, error) {
		return client.GetLogs(ctx, filter)
	})
	if err != nil {
		return nil, err
	}

	amount := big.NewInt(0)
	for _, lg := range logs {
		amount.Add(amount, pv.qualifyingAmount(lg, paymentRef))
	}
	return pv.statusForAmount(amount), nil
}

// qualifyingAmount returns the credited amount of a single log, or zero if
// the log is not a token Transfer from the configured contract into the
// configured recipient within the given payment transaction. The sender is
// deliberately ignored.
func (pv *PaymentVerifier) qualifyingAmount(lg *ethereum.EthereumEventLog, paymentRef string) *big.Int {
	zero := big.NewInt(0)
	if lg == nil || lg.Removed {
		return zero
	}
	if !utils.AreAddressesEqual(lg.Address.Value(), pv.paymentConfig.TokenAddress) {
		return zero
	}
	if lg.TransactionHash.Value() != "" && !strings.EqualFold(lg.TransactionHash.Value(), paymentRef) {
		return zero
	}
	event := logClassifier.DecodeEventLog(lg)
	if event == nil || event.Transfer == nil {
		return zero
	}
	if !utils.AreAddressesEqual(event.Transfer.To.Hex(), pv.paymentConfig.RecipientAddress) {
		return zero
	}
	return event.Transfer.Amount
}

func (pv *PaymentVerifier) statusForAmount(amount *big.Int) *PaymentStatus {
	if amount.Cmp(pv.paymentConfig.RequiredAmount) >= 0 {
		return &PaymentStatus{
			State:      PaymentState_Confirmed,
			AmountPaid: amount,
			Message:    "Payment confirmed",
		}
	}
	if amount.Sign() > 0 {
		return &PaymentStatus{
			State:      PaymentState_Pending,
			AmountPaid: amount,
			Message:    "Insufficient amount received",
		}
	}
	return &PaymentStatus{
		State:   PaymentState_Pending,
		Message: "No payment received yet",
	}
}

// hasEnoughConfirmations compares the inclusion depth of a block against
// the configured minimum. A minimum of zero or one is satisfied by
// inclusion itself.
func (pv *PaymentVerifier) hasEnoughConfirmations(ctx context.Context, inclusionBlock uint64) (bool, error) {
	if pv.paymentConfig.MinimumConfirmations <= 1 {
		return true, nil
	}
	height, err := providerPool.Read(ctx, pv.pool, "getBlockNumber", func(ctx context.Context, client *ethereum.Client) (uint64, error) {
		return client.GetBlockNumber(ctx)
	})
	if err != nil {
		return false, err
	}
	if height < inclusionBlock {
		return false, nil
	}
	return height-inclusionBlock+1 >= pv.paymentConfig.MinimumConfirmations, nil
}
