package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/address"
	"github.com/CMPGFB/cbBTC-Agent-Plugin/internal/ui"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum <address>",
	Short: "Validate an address and print its EIP-55 checksum form",
	Long: `Check an address offline with the same rules transfer and approve use.

Examples:
  cbbtc checksum 0xd8da6bf26964af9d7eed9e03e53415d37aa96045
  cbbtc checksum 0xD8DA6BF26964AF9D7EED9E03E53415D37AA96045`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if _, err := address.Validate(input); err != nil {
			return err
		}
		checksummed, err := address.Checksum(input)
		if err != nil {
			return err
		}

		status := ui.Warn("valid address but not checksummed")
		if address.IsChecksummed(input) {
			status = ui.Success("address is correctly checksummed")
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("EIP-55 Checksum", [][2]string{
			{"Input", input},
			{"Checksummed", ui.Addr(checksummed)},
			{"Lowercase", strings.ToLower(checksummed)},
			{"Valid", status},
		}))
		return nil
	},
}
