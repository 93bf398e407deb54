package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/txplain-labs/txplain/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "txplain",
	Short: "Explains what an on-chain transaction did, unlocked by an on-chain payment",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)
	rootCmd.PersistentFlags().StringP(config.ChainFlag, "c", "mainnet", "The chain to use (mainnet, base, sepolia)")

	rootCmd.PersistentFlags().String(config.EthereumRpcUrls, "", `Comma-separated ordered list of JSON-RPC endpoints, e.g. "http://<hostname>:8545,http://<fallback>:8545"`)

	rootCmd.PersistentFlags().String(config.PaymentRecipientAddress, "", `Address inbound payments must credit`)
	rootCmd.PersistentFlags().String(config.PaymentTokenAddress, "", `Accepted payment token contract (defaults to the chain's USDC)`)
	rootCmd.PersistentFlags().String(config.PaymentRequiredAmount, "1000000", `Price in the token's smallest unit`)
	rootCmd.PersistentFlags().Uint64(config.PaymentMinimumConfirmations, 1, `Confirmations required before a payment counts`)

	rootCmd.PersistentFlags().Int(config.RpcHttpPort, 7101, `http rpc port`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runVersionCmd)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}
