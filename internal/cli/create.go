package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelwallet/kestrel/internal/keys"
	"github.com/kestrelwallet/kestrel/internal/secure"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new HD wallet",
	Long: `Create a new wallet with a freshly generated 12-word mnemonic.

The mnemonic is shown exactly once. Anyone holding it can spend from
this wallet on any device; write it down and keep it offline.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		password, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer secure.Zero(password)

		result, err := mgr.Create(string(password))
		if err != nil {
			return err
		}

		fmt.Printf("Address: %s\n", result.Address)
		fmt.Printf("Derivation path: %s\n\n", keys.DerivationPath)
		fmt.Println("Recovery phrase (shown once, write it down now):")
		fmt.Printf("\n  %s\n\n", result.Mnemonic)
		fmt.Fprintln(os.Stderr, "WARNING: anyone with this phrase controls the wallet.")
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern
func init() {
	rootCmd.AddCommand(createCmd)
}
