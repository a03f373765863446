package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/address"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/amount"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/chain"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/config"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/CMPGFB/cbBTC-Agent-Plugin/cmd.Version=1.2.3" .
var Version = "0.1.0"

// Process exit codes.
const (
	exitFailure      = 1
	exitInvalidInput = 2
	exitConfig       = 3
)

var (
	envFile     string
	rpcURL      string
	contractHex string
	timeout     time.Duration
	verbose     bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "cbbtc",
	Short: "Check balances, transfer and approve cbBTC",
	Long: `cbbtc — a small client for the cbBTC ERC-20 token.

  Reads PRIVATE_KEY and RPC_URL from the environment or a .env file.
  Every address and amount is validated locally before anything is sent.

Environment:
  PRIVATE_KEY             hex signing key (or CBBTC_KEYCHAIN_ITEM to read it from the OS keychain)
  RPC_URL                 JSON-RPC endpoint
  CBBTC_CONTRACT_ADDRESS  token contract (default: cbBTC)
  CBBTC_DECIMALS          token decimals (default: 8)
  CBBTC_GAS_LIMIT         fixed gas limit for writes (default: 500000)
  CHAIN_ID                chain id (default: ask the node)
  CBBTC_CONFIRM_TIMEOUT   how long to wait for a receipt (default: 3m)`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l

		if cmd.Flags().Changed("env-file") && envFile != "" {
			if _, err := os.Stat(envFile); err != nil {
				return fmt.Errorf("env file: %w", err)
			}
		}
		cfg, err = config.Load(envFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return applyFlagOverrides()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		logger.Error("command failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file to load")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", "", "JSON-RPC endpoint (overrides RPC_URL)")
	rootCmd.PersistentFlags().StringVar(&contractHex, "contract", "", "token contract (overrides CBBTC_CONTRACT_ADDRESS)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "overall deadline per command (default: CBBTC_CONFIRM_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	rootCmd.AddCommand(
		balanceCmd,
		transferCmd,
		approveCmd,
		allowanceCmd,
		checksumCmd,
		convertCmd,
	)
}

func applyFlagOverrides() error {
	if rpcURL != "" {
		cfg.RPCURL = rpcURL
	}
	if contractHex != "" {
		addr, err := address.Validate(contractHex)
		if err != nil {
			return fmt.Errorf("--contract: %w", err)
		}
		cfg.Contract = addr
	}
	if timeout > 0 {
		cfg.ConfirmTimeout = timeout
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zc.Build()
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, address.ErrInvalidAddress), errors.Is(err, amount.ErrInvalidAmount):
		return exitInvalidInput
	case errors.Is(err, chain.ErrMissingCredential),
		errors.Is(err, chain.ErrMissingEndpoint),
		errors.Is(err, chain.ErrInvalidCredential):
		return exitConfig
	default:
		return exitFailure
	}
}
