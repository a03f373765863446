package cmd

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/address"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/amount"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/ui"
)

var transferYes bool

var transferCmd = &cobra.Command{
	Use:   "transfer <recipient> <amount>",
	Short: "Send cbBTC to an address",
	Long: `Send cbBTC from the signing wallet and wait for the transaction to be mined.

The amount is in whole cbBTC (e.g. 0.015). A preview is shown and must be
confirmed unless --yes is given.

Examples:
  cbbtc transfer 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045 0.015
  cbbtc transfer 0xd8da6bf26964af9d7eed9e03e53415d37aa96045 1 --yes`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(cmd, writeSpec{
			title:   "Transfer Preview",
			verb:    "Transfer",
			role:    "To",
			target:  args[0],
			amount:  args[1],
			confirm: transferYes,
			submit: func(ctx context.Context, s *session) (string, error) {
				return s.client.TransferCbBTC(ctx, args[0], args[1])
			},
		})
	},
}

func init() {
	transferCmd.Flags().BoolVarP(&transferYes, "yes", "y", false, "skip the confirmation prompt")
}

// writeSpec describes one state-changing command.
type writeSpec struct {
	title   string
	verb    string
	role    string
	target  string
	amount  string
	confirm bool // true = already confirmed
	submit  func(ctx context.Context, s *session) (string, error)
}

// runWrite validates locally, previews, asks for confirmation, submits and
// waits for the receipt. The prompt is not covered by the timeout: dialing
// and submitting each get their own deadline.
func runWrite(cmd *cobra.Command, w writeSpec) error {
	// Fail on bad input before dialing anything.
	target, err := address.Validate(w.target)
	if err != nil {
		return err
	}
	if _, err := amount.ToBaseUnits(w.amount, precheckDecimals()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	dialCtx, cancelDial := deadline(cmd.Context())
	s, err := openSession(dialCtx, cfg)
	cancelDial()
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Fprintln(out, ui.KeyValueBlock(w.title, [][2]string{
		{"From", ui.Addr(s.from.Hex())},
		{w.role, ui.Addr(target.Hex())},
		{"Amount", ui.Val(w.amount + " cbBTC")},
		{"Decimals", fmt.Sprintf("%d", s.client.Decimals())},
		{"Contract", ui.Addr(s.contract.Hex())},
		{"Gas Limit", fmt.Sprintf("%d", s.gasLimit)},
		{"Chain ID", s.chainID.String()},
	}))

	if !w.confirm && !ui.Confirm(cmd.InOrStdin(), out, w.verb+" now?") {
		fmt.Fprintln(out, ui.Meta("Cancelled."))
		return nil
	}

	logger.Info("submitting",
		zap.String("op", w.verb),
		zap.String("target", target.Hex()),
		zap.String("amount", w.amount))

	ctx, cancel := deadline(cmd.Context())
	defer cancel()

	spin := ui.NewSpinner(cmd.ErrOrStderr(), "Waiting for confirmation...")
	spin.Start()
	hash, err := w.submit(ctx, s)
	spin.Stop()
	if err != nil {
		return err
	}

	logger.Info("confirmed", zap.String("op", w.verb), zap.String("tx", hash))
	fmt.Fprintln(out, ui.Success(w.verb+" confirmed"))
	fmt.Fprintln(out, ui.Addr("Hash: "+hash))
	return nil
}

// precheckDecimals is the precision amounts are vetted against before
// dialing. Without CBBTC_DECIMALS only format and sign are checked here; the
// client checks precision once the contract's decimals are known.
func precheckDecimals() uint8 {
	if cfg.DecimalsSet {
		return cfg.Decimals
	}
	return math.MaxUint8
}
