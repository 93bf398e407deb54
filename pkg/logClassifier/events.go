package logClassifier

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/txplain-labs/txplain/pkg/clients/ethereum"
)

// Signature hashes for the two event shapes this system decodes. Everything
// else is expected and silently skipped.
var (
	TransferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	ApprovalEventSignature = crypto.Keccak256Hash([]byte("Approval(address,address,uint256)"))
)

// ValueTransfer is a decoded ERC-20 Transfer event.
type ValueTransfer struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// Approval is a decoded ERC-20 Approval event.
type Approval struct {
	Owner   common.Address
	Spender common.Address
	Amount  *big.Int
}

// DecodedEvent is a tagged variant: exactly one of Transfer or Approval is
// non-nil.
type DecodedEvent struct {
	Transfer *ValueTransfer
	Approval *Approval
}

// DecodeEventLog attempts to decode a raw log against the two known event
// signatures. It returns nil for logs that match neither signature or are
// malformed; that is the expected outcome for event types this system does
// not model, not an error condition.
func DecodeEventLog(lg *ethereum.EthereumEventLog) *DecodedEvent {
	if lg == nil || len(lg.Topics) != 3 {
		return nil
	}

	topicHash := common.HexToHash(lg.Topics[0].Value())
	amount, ok := parseAmountData(lg.Data.Value())
	if !ok {
		return nil
	}

	first := common.HexToAddress(lg.Topics[1].Value())
	second := common.HexToAddress(lg.Topics[2].Value())

	switch topicHash {
	case TransferEventSignature:
		return &DecodedEvent{
			Transfer: &ValueTransfer{
				From:   first,
				To:     second,
				Amount: amount,
			},
		}
	case ApprovalEventSignature:
		return &DecodedEvent{
			Approval: &Approval{
				Owner:   first,
				Spender: second,
				Amount:  amount,
			},
		}
	}
	return nil
}

// parseAmountData parses a single 32-byte uint256 word from a log's data
// payload.
func parseAmountData(data string) (*big.Int, bool) {
	raw, err := hexutil.Decode(data)
	if err != nil || len(raw) != 32 {
		return nil, false
	}
	return new(big.Int).SetBytes(raw), true
}

// RecipientTopic returns the 32-byte indexed-topic encoding of an address,
// for filtering logs by recipient.
func RecipientTopic(address string) string {
	return common.HexToHash(common.HexToAddress(address).Hex()).Hex()
}
