package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelwallet/kestrel/internal/secure"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Reveal wallet secrets after re-entering the password",
}

var exportKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print the private key",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		password, err := promptPassword("Enter password: ")
		if err != nil {
			return err
		}
		defer secure.Zero(password)

		key, err := mgr.ExportPrivateKey(string(password))
		if err != nil {
			return err
		}

		fmt.Println(key)
		fmt.Fprintln(os.Stderr, "WARNING: anyone with this key controls the wallet.")
		return nil
	},
}

var exportMnemonicCmd = &cobra.Command{
	Use:   "mnemonic",
	Short: "Print the recovery phrase",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		password, err := promptPassword("Enter password: ")
		if err != nil {
			return err
		}
		defer secure.Zero(password)

		phrase, err := mgr.ExportMnemonic(string(password))
		if err != nil {
			return err
		}

		fmt.Println(phrase)
		fmt.Fprintln(os.Stderr, "WARNING: anyone with this phrase controls the wallet.")
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern
func init() {
	exportCmd.AddCommand(exportKeyCmd)
	exportCmd.AddCommand(exportMnemonicCmd)
	rootCmd.AddCommand(exportCmd)
}
