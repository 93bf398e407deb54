package logClassifier

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/txplain-labs/txplain/pkg/clients/ethereum"
)

const (
	tokenAddress   = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	routerAddress  = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	holderAddress  = "0x1111111111111111111111111111111111111111"
	spenderAddress = "0x2222222222222222222222222222222222222222"
)

func amountData(amount *big.Int) ethereum.EthereumHexString {
	return ethereum.EthereumHexString(hexutil.Encode(common.BigToHash(amount).Bytes()))
}

func transferLog(emitter, from, to string, amount *big.Int) *ethereum.EthereumEventLog {
	return &ethereum.EthereumEventLog{
		Address: ethereum.EthereumHexString(emitter),
		Topics: []ethereum.EthereumHexString{
			ethereum.EthereumHexString(TransferEventSignature.Hex()),
			ethereum.EthereumHexString(RecipientTopic(from)),
			ethereum.EthereumHexString(RecipientTopic(to)),
		},
		Data: amountData(amount),
	}
}

func approvalLog(emitter, owner, spender string, amount *big.Int) *ethereum.EthereumEventLog {
	return &ethereum.EthereumEventLog{
		Address: ethereum.EthereumHexString(emitter),
		Topics: []ethereum.EthereumHexString{
			ethereum.EthereumHexString(ApprovalEventSignature.Hex()),
			ethereum.EthereumHexString(RecipientTopic(owner)),
			ethereum.EthereumHexString(RecipientTopic(spender)),
		},
		Data: amountData(amount),
	}
}

func Test_ClassifyReceiptLogs(t *testing.T) {
	t.Run("should count transfers and approvals across distinct contracts", func(t *testing.T) {
		logs := []*ethereum.EthereumEventLog{
			approvalLog(tokenAddress, holderAddress, spenderAddress, big.NewInt(1_000_000)),
			transferLog(routerAddress, holderAddress, spenderAddress, big.NewInt(500)),
		}

		c := ClassifyReceiptLogs(logs)

		assert.Equal(t, 1, c.TransferCount)
		assert.Equal(t, 1, c.ApprovalCount)
		assert.Equal(t, 2, len(c.TouchedContracts))
		assert.Equal(t, Risk_Medium, c.Risk)
	})

	t.Run("should lower-case and dedupe touched contracts", func(t *testing.T) {
		logs := []*ethereum.EthereumEventLog{
			transferLog(tokenAddress, holderAddress, spenderAddress, big.NewInt(1)),
			transferLog("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", spenderAddress, holderAddress, big.NewInt(2)),
		}

		c := ClassifyReceiptLogs(logs)

		assert.Equal(t, []string{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"}, c.TouchedContracts)
		assert.Equal(t, 2, c.TransferCount)
		assert.Equal(t, Risk_Low, c.Risk)
	})

	t.Run("should skip undecodable logs but keep their emitter", func(t *testing.T) {
		logs := []*ethereum.EthereumEventLog{
			{
				Address: ethereum.EthereumHexString(routerAddress),
				Topics: []ethereum.EthereumHexString{
					"0xdeadbeef00000000000000000000000000000000000000000000000000000000",
				},
				Data: "0x",
			},
			transferLog(tokenAddress, holderAddress, spenderAddress, big.NewInt(9)),
		}

		c := ClassifyReceiptLogs(logs)

		assert.Equal(t, 1, c.TransferCount)
		assert.Equal(t, 0, c.ApprovalCount)
		assert.Equal(t, 2, len(c.TouchedContracts))
		assert.Equal(t, Risk_LowMedium, c.Risk)
	})

	t.Run("should label an empty receipt as low risk", func(t *testing.T) {
		c := ClassifyReceiptLogs(nil)

		assert.Equal(t, 0, len(c.TouchedContracts))
		assert.Equal(t, Risk_Low, c.Risk)
	})
}

func Test_ClassifyTransactionKind(t *testing.T) {
	oneEth := hexutil.Big(*big.NewInt(1_000_000_000_000_000_000))
	zero := hexutil.Big(*big.NewInt(0))

	t.Run("should label a positive-value transaction with empty input as an ETH transfer", func(t *testing.T) {
		tx := &ethereum.EthereumTransaction{Value: &oneEth, Input: "0x"}
		assert.Equal(t, Kind_EthTransfer, ClassifyTransactionKind(tx))
	})

	t.Run("should label any transaction with a call payload as a contract interaction", func(t *testing.T) {
		tx := &ethereum.EthereumTransaction{Value: &oneEth, Input: "0xa9059cbb"}
		assert.Equal(t, Kind_ContractInteraction, ClassifyTransactionKind(tx))
	})

	t.Run("should label a zero-value transaction as a contract interaction", func(t *testing.T) {
		tx := &ethereum.EthereumTransaction{Value: &zero, Input: "0x"}
		assert.Equal(t, Kind_ContractInteraction, ClassifyTransactionKind(tx))
	})
}

func Test_FormatFee(t *testing.T) {
	t.Run("should render the fee in ETH at six decimals", func(t *testing.T) {
		gasPrice := hexutil.Big(*big.NewInt(20_000_000_000))
		receipt := &ethereum.EthereumTransactionReceipt{
			GasUsed:           ethereum.EthereumQuantity(21_000),
			EffectiveGasPrice: &gasPrice,
		}
		assert.Equal(t, "0.000420 ETH", FormatFee(receipt))
	})

	t.Run("should fall back when the receipt is missing", func(t *testing.T) {
		assert.Equal(t, FeeUnavailable, FormatFee(nil))
	})

	t.Run("should fall back when the gas price is unknown", func(t *testing.T) {
		receipt := &ethereum.EthereumTransactionReceipt{GasUsed: ethereum.EthereumQuantity(21_000)}
		assert.Equal(t, FeeUnavailable, FormatFee(receipt))
	})
}
