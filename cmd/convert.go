package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/amount"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/ui"
)

var (
	convertFromBase bool
	convertDecimals uint8
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount>",
	Short: "Convert between whole cbBTC and base units",
	Long: `Convert a cbBTC amount to base units (satoshi-sized for 8 decimals), or
back with --from-base. Uses CBBTC_DECIMALS unless --decimals is given.

Examples:
  cbbtc convert 1.5              # → 150000000
  cbbtc convert 150000000 --from-base
  cbbtc convert 1.5 --decimals 18`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decimals := cfg.Decimals
		if cmd.Flags().Changed("decimals") {
			decimals = convertDecimals
		}

		var whole, base string
		if convertFromBase {
			v, ok := new(big.Int).SetString(args[0], 10)
			if !ok || v.Sign() < 0 {
				return fmt.Errorf("%w %q: base units must be a non-negative integer", amount.ErrInvalidAmount, args[0])
			}
			whole, base = amount.FromBaseUnits(v, decimals), v.String()
		} else {
			v, err := amount.ToBaseUnits(args[0], decimals)
			if err != nil {
				return err
			}
			whole, base = amount.FromBaseUnits(v, decimals), v.String()
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("cbBTC Amount", [][2]string{
			{"cbBTC", ui.Val(whole)},
			{"Base units", ui.Val(base)},
			{"Decimals", fmt.Sprintf("%d", decimals)},
		}))
		return nil
	},
}

func init() {
	convertCmd.Flags().BoolVar(&convertFromBase, "from-base", false, "input is in base units")
	convertCmd.Flags().Uint8Var(&convertDecimals, "decimals", 8, "token decimals (default: CBBTC_DECIMALS)")
}
