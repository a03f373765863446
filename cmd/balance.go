package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/address"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/ui"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show the cbBTC balance of an address",
	Long: `Show the cbBTC balance of an address. Without an argument the
address derived from the signing key is used.

Examples:
  cbbtc balance 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045
  cbbtc balance --rpc-url https://mainnet.base.org 0xd8da6bf26964af9d7eed9e03e53415d37aa96045`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if _, err := address.Validate(args[0]); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
			target := s.from.Hex()
			if len(args) == 1 {
				target = args[0]
			}

			spin := ui.NewSpinner(cmd.ErrOrStderr(), "Querying balance...")
			spin.Start()
			bal, err := s.client.CheckBalance(ctx, target)
			spin.Stop()
			if err != nil {
				return err
			}
			logger.Debug("balance", zap.String("address", target), zap.String("balance", bal))

			fmt.Fprintln(out, ui.KeyValueBlock("cbBTC Balance", [][2]string{
				{"Address", ui.Addr(target)},
				{"Balance", ui.Val(bal + " cbBTC")},
				{"Contract", ui.Addr(s.contract.Hex())},
				{"Chain ID", s.chainID.String()},
			}))
			return nil
		})
	},
}
