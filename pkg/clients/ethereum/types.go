package ethereum

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// EthereumQuantity is a uint64 encoded on the wire as a 0x-prefixed hex
// string (block numbers, gas, status codes).
type EthereumQuantity uint64

func (q EthereumQuantity) Value() uint64 {
	return uint64(q)
}

func (q *EthereumQuantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHexUint64(s)
	if err != nil {
		return err
	}
	*q = EthereumQuantity(parsed)
	return nil
}

func (q EthereumQuantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.EncodeUint64(uint64(q)))
}

// EthereumHexString is an opaque 0x-prefixed hex string (hashes, addresses,
// calldata, log data). Kept as received; callers normalize case when
// comparing.
type EthereumHexString string

func (s EthereumHexString) Value() string {
	return string(s)
}

// ParseHexUint64 parses a 0x-prefixed hex quantity.
func ParseHexUint64(s string) (uint64, error) {
	trimmed := strings.TrimPrefix(s, "0x")
	if trimmed == "" {
		return 0, errors.New("empty hex quantity")
	}
	v, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid hex quantity '%s'", s)
	}
	return v, nil
}

// EthereumTransaction is a transaction body as returned by
// eth_getTransactionByHash. BlockNumber is nil while the transaction is
// pending.
type EthereumTransaction struct {
	Hash        EthereumHexString `json:"hash"`
	From        EthereumHexString `json:"from"`
	To          EthereumHexString `json:"to"`
	Input       EthereumHexString `json:"input"`
	Value       *hexutil.Big      `json:"value"`
	BlockNumber *EthereumQuantity `json:"blockNumber"`
}

// IsPending reports whether the transaction has not been included in a
// block yet.
func (t *EthereumTransaction) IsPending() bool {
	return t.BlockNumber == nil
}

// HasEmptyInput reports whether the transaction carries no call payload.
func (t *EthereumTransaction) HasEmptyInput() bool {
	input := strings.TrimPrefix(t.Input.Value(), "0x")
	return input == ""
}

// EthereumTransactionReceipt is the post-execution record of a mined
// transaction. It exists only once the transaction is included in a block.
type EthereumTransactionReceipt struct {
	TransactionHash   EthereumHexString   `json:"transactionHash"`
	Status            EthereumQuantity    `json:"status"`
	BlockNumber       EthereumQuantity    `json:"blockNumber"`
	GasUsed           EthereumQuantity    `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big        `json:"effectiveGasPrice"`
	ContractAddress   EthereumHexString   `json:"contractAddress"`
	Logs              []*EthereumEventLog `json:"logs"`
}

// IsSuccessful reports whether execution completed without reverting.
func (r *EthereumTransactionReceipt) IsSuccessful() bool {
	return r.Status.Value() == 1
}

// EthereumEventLog is a raw, un-decoded log entry emitted during contract
// execution.
type EthereumEventLog struct {
	Address         EthereumHexString   `json:"address"`
	Topics          []EthereumHexString `json:"topics"`
	Data            EthereumHexString   `json:"data"`
	BlockNumber     EthereumQuantity    `json:"blockNumber"`
	LogIndex        EthereumQuantity    `json:"logIndex"`
	TransactionHash EthereumHexString   `json:"transactionHash"`
	Removed         bool                `json:"removed"`
}

// LogFilter describes an eth_getLogs query. An empty string in Topics is a
// wildcard for that position.
type LogFilter struct {
	FromBlock uint64
	ToBlock   uint64
	Address   string
	Topics    []string
}

func (f *LogFilter) toParams() map[string]interface{} {
	params := map[string]interface{}{
		"fromBlock": hexutil.EncodeUint64(f.FromBlock),
		"toBlock":   hexutil.EncodeUint64(f.ToBlock),
	}
	if f.Address != "" {
		params["address"] = f.Address
	}
	if len(f.Topics) > 0 {
		topics := make([]interface{}, len(f.Topics))
		for i, t := range f.Topics {
			if t == "" {
				topics[i] = nil
			} else {
				topics[i] = t
			}
		}
		params["topics"] = topics
	}
	return params
}
