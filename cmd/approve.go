package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/address"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/ui"
)

var approveYes bool

var approveCmd = &cobra.Command{
	Use:   "approve <spender> <amount>",
	Short: "Allow a spender to move cbBTC from the signing wallet",
	Long: `Set the ERC-20 allowance of spender to amount (in whole cbBTC).
This replaces any previous allowance; it does not add to it.

Examples:
  cbbtc approve 0xRouter 0.5
  cbbtc approve 0xRouter 0.5 --yes`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(cmd, writeSpec{
			title:   "Approval Preview",
			verb:    "Approval",
			role:    "Spender",
			target:  args[0],
			amount:  args[1],
			confirm: approveYes,
			submit: func(ctx context.Context, s *session) (string, error) {
				return s.client.ApproveSpender(ctx, args[0], args[1])
			},
		})
	},
}

var allowanceCmd = &cobra.Command{
	Use:   "allowance <owner> <spender>",
	Short: "Show how much cbBTC a spender may move for an owner",
	Long: `Query the ERC-20 allowance owner has granted spender.

Examples:
  cbbtc allowance 0xOwner 0xRouter`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, a := range args {
			if _, err := address.Validate(a); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		return withSession(cmd.Context(), func(ctx context.Context, s *session) error {
			spin := ui.NewSpinner(cmd.ErrOrStderr(), "Querying allowance...")
			spin.Start()
			v, err := s.client.Allowance(ctx, args[0], args[1])
			spin.Stop()
			if err != nil {
				return err
			}
			logger.Debug("allowance", zap.String("owner", args[0]), zap.String("spender", args[1]), zap.String("value", v))

			fmt.Fprintln(out, ui.KeyValueBlock("cbBTC Allowance", [][2]string{
				{"Owner", ui.Addr(args[0])},
				{"Spender", ui.Addr(args[1])},
				{"Allowance", ui.Val(v + " cbBTC")},
			}))
			return nil
		})
	},
}

func init() {
	approveCmd.Flags().BoolVarP(&approveYes, "yes", "y", false, "skip the confirmation prompt")
}
