package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"github.com/txplain-labs/txplain/pkg/utils"
)

const ENV_PREFIX = "TXPLAIN"

type Chain string

const (
	Chain_Mainnet Chain = "mainnet"
	Chain_Base    Chain = "base"
	Chain_Sepolia Chain = "sepolia"
)

func (c Chain) String() string {
	return string(c)
}

func ParseChain(name string) (Chain, error) {
	switch name {
	case "mainnet":
		return Chain_Mainnet, nil
	case "base":
		return Chain_Base, nil
	case "sepolia":
		return Chain_Sepolia, nil
	}
	return Chain_Mainnet, fmt.Errorf("unsupported chain '%s'", name)
}

// ChainId returns the network identifier a payment must be observed on for
// the given chain. Payments on any other network never count.
func (c Chain) ChainId() uint64 {
	switch c {
	case Chain_Mainnet:
		return 1
	case Chain_Base:
		return 8453
	case Chain_Sepolia:
		return 11155111
	}
	return 0
}

// UsdcAddress returns the canonical USDC contract address for the chain.
func (c Chain) UsdcAddress() string {
	switch c {
	case Chain_Mainnet:
		return "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	case Chain_Base:
		return "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"
	case Chain_Sepolia:
		return "0x1c7d4b196cb0c7b01d743fbc6116a902379c7238"
	}
	return ""
}

// ExplorerTxUrl formats a public explorer link for a transaction hash.
func (c Chain) ExplorerTxUrl(txHash string) string {
	switch c {
	case Chain_Mainnet:
		return fmt.Sprintf("https://etherscan.io/tx/%s", txHash)
	case Chain_Base:
		return fmt.Sprintf("https://basescan.org/tx/%s", txHash)
	case Chain_Sepolia:
		return fmt.Sprintf("https://sepolia.etherscan.io/tx/%s", txHash)
	}
	return ""
}

// Flag names, shared between the cobra flag definitions and viper lookups.
const (
	Debug = "debug"

	ChainFlag = "chain"

	EthereumRpcUrls = "ethereum.rpc-urls"

	PaymentRecipientAddress     = "payment.recipient-address"
	PaymentTokenAddress         = "payment.token-address"
	PaymentRequiredAmount       = "payment.required-amount"
	PaymentMinimumConfirmations = "payment.minimum-confirmations"

	RpcHttpPort = "rpc.http-port"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"
)

type EthereumRpcConfig struct {
	// Ordered list of candidate JSON-RPC endpoints. Each read scans this
	// list from the start; there is no sticky affinity.
	Urls []string
}

type PaymentConfig struct {
	// RecipientAddress is the fixed address inbound transfers must credit.
	RecipientAddress string
	// TokenAddress is the accepted stablecoin contract.
	TokenAddress string
	// RequiredAmount is the price in the token's smallest unit.
	RequiredAmount *big.Int
	// MinimumConfirmations a payment's inclusion block must have before it
	// counts as confirmed.
	MinimumConfirmations uint64
}

type RpcConfig struct {
	HttpPort int
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

type Config struct {
	Debug             bool
	Chain             Chain
	EthereumRpcConfig EthereumRpcConfig
	PaymentConfig     PaymentConfig
	RpcConfig         RpcConfig
	PrometheusConfig  PrometheusConfig
}

func parseListString(s string) []string {
	l := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			l = append(l, trimmed)
		}
	}
	return l
}

// NewConfig builds a Config from viper-bound flags and environment
// variables. The result is read-only process-wide configuration; nothing
// mutates it after startup.
func NewConfig() *Config {
	chain, err := ParseChain(viper.GetString(normalizeFlagName(ChainFlag)))
	if err != nil {
		panic(err)
	}

	tokenAddress := viper.GetString(normalizeFlagName(PaymentTokenAddress))
	if tokenAddress == "" {
		tokenAddress = chain.UsdcAddress()
	}

	requiredAmount, ok := new(big.Int).SetString(viper.GetString(normalizeFlagName(PaymentRequiredAmount)), 10)
	if !ok {
		requiredAmount = nil
	}

	return &Config{
		Debug: viper.GetBool(normalizeFlagName(Debug)),
		Chain: chain,
		EthereumRpcConfig: EthereumRpcConfig{
			Urls: parseListString(viper.GetString(normalizeFlagName(EthereumRpcUrls))),
		},
		PaymentConfig: PaymentConfig{
			RecipientAddress:     strings.ToLower(viper.GetString(normalizeFlagName(PaymentRecipientAddress))),
			TokenAddress:         strings.ToLower(tokenAddress),
			RequiredAmount:       requiredAmount,
			MinimumConfirmations: viper.GetUint64(normalizeFlagName(PaymentMinimumConfirmations)),
		},
		RpcConfig: RpcConfig{
			HttpPort: viper.GetInt(normalizeFlagName(RpcHttpPort)),
		},
		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    viper.GetInt(normalizeFlagName(PrometheusPort)),
		},
	}
}

// Validate checks the startup invariants the verification pipeline relies on.
func (c *Config) Validate() error {
	if len(c.EthereumRpcConfig.Urls) == 0 {
		return fmt.Errorf("at least one ethereum rpc url is required")
	}
	if !common.IsHexAddress(c.PaymentConfig.RecipientAddress) {
		return fmt.Errorf("invalid payment recipient address '%s'", c.PaymentConfig.RecipientAddress)
	}
	if !common.IsHexAddress(c.PaymentConfig.TokenAddress) {
		return fmt.Errorf("invalid payment token address '%s'", c.PaymentConfig.TokenAddress)
	}
	if c.PaymentConfig.RequiredAmount == nil || c.PaymentConfig.RequiredAmount.Sign() <= 0 {
		return fmt.Errorf("payment required amount must be a positive integer")
	}
	if utils.AreAddressesEqual(c.PaymentConfig.RecipientAddress, c.PaymentConfig.TokenAddress) {
		return fmt.Errorf("payment recipient and token address must differ")
	}
	return nil
}

// KebabToSnakeCase converts a flag name to the form viper uses as a key.
func KebabToSnakeCase(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "-", "_"), ".", "_")
}

func normalizeFlagName(s string) string {
	return KebabToSnakeCase(s)
}
