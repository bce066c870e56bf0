package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored wallet without unlocking it",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		address, err := mgr.Address()
		if kerrors.Is(err, kerrors.ErrNoWallet) {
			fmt.Println("No wallet. Run 'kestrel create' or 'kestrel import'.")
			return nil
		}
		if err != nil {
			return err
		}

		walletType, err := mgr.WalletType()
		if err != nil {
			return err
		}

		prefs, err := store.LoadPreferences()
		if err != nil {
			return err
		}
		timeout := prefs.IdleTimeout
		if timeout == "" {
			timeout = cfg.Security.IdleTimeout
		}

		fmt.Printf("Address:      %s\n", address)
		fmt.Printf("Type:         %s\n", walletType)
		fmt.Printf("Idle timeout: %s\n", timeout)
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern
func init() {
	rootCmd.AddCommand(statusCmd)
}
