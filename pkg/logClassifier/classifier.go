// Package logClassifier interprets the event logs of a transaction receipt
// against the two event shapes this system knows about and derives the
// informational labels shown to the user.
package logClassifier

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/txplain-labs/txplain/pkg/clients/ethereum"
)

// Risk labels derived from the classification. Heuristic only, not a
// security guarantee.
const (
	Risk_Low       = "Low"
	Risk_LowMedium = "Low-Medium"
	Risk_Medium    = "Medium"
)

// Transaction kind labels.
const (
	Kind_EthTransfer         = "ETH transfer"
	Kind_ContractInteraction = "Contract interaction"
)

// FeeUnavailable is displayed when gas usage or price is unknown (receipt
// missing).
const FeeUnavailable = "—"

// weiDecimals converts wei to ETH for display.
const weiDecimals = 18

// Classification summarizes a receipt's event logs.
type Classification struct {
	// TouchedContracts holds the distinct emitting addresses, lower-cased,
	// in first-seen order.
	TouchedContracts []string
	TransferCount    int
	ApprovalCount    int
	Risk             string
}

// ClassifyReceiptLogs walks the receipt's logs in order. Every log
// contributes its emitting address to the touched-contract set; logs that
// decode as Transfer or Approval additionally increment the corresponding
// counter. Undecodable logs are skipped.
func ClassifyReceiptLogs(logs []*ethereum.EthereumEventLog) *Classification {
	classification := &Classification{
		TouchedContracts: make([]string, 0),
	}

	seen := make(map[string]bool)
	for _, lg := range logs {
		address := strings.ToLower(lg.Address.Value())
		if !seen[address] {
			seen[address] = true
			classification.TouchedContracts = append(classification.TouchedContracts, address)
		}

		event := DecodeEventLog(lg)
		if event == nil {
			continue
		}
		if event.Transfer != nil {
			classification.TransferCount++
		}
		if event.Approval != nil {
			classification.ApprovalCount++
		}
	}

	classification.Risk = deriveRisk(classification)
	return classification
}

func deriveRisk(c *Classification) string {
	if c.ApprovalCount > 0 {
		return Risk_Medium
	}
	if len(c.TouchedContracts) > 1 {
		return Risk_LowMedium
	}
	return Risk_Low
}

// ClassifyTransactionKind labels a transaction as a plain native-asset
// transfer iff it carries positive value and no call payload.
func ClassifyTransactionKind(tx *ethereum.EthereumTransaction) string {
	if tx == nil {
		return Kind_ContractInteraction
	}
	value := big.NewInt(0)
	if tx.Value != nil {
		value = tx.Value.ToInt()
	}
	if value.Sign() > 0 && tx.HasEmptyInput() {
		return Kind_EthTransfer
	}
	return Kind_ContractInteraction
}

// FormatFee renders gasUsed × effectiveGasPrice in ETH at fixed 6-decimal
// precision, or FeeUnavailable when the receipt is missing either quantity.
func FormatFee(receipt *ethereum.EthereumTransactionReceipt) string {
	if receipt == nil || receipt.EffectiveGasPrice == nil {
		return FeeUnavailable
	}
	gasUsed := new(big.Int).SetUint64(receipt.GasUsed.Value())
	feeWei := new(big.Int).Mul(gasUsed, receipt.EffectiveGasPrice.ToInt())
	return decimal.NewFromBigInt(feeWei, -weiDecimals).StringFixed(6) + " ETH"
}
