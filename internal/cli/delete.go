package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stored wallet",
	Long: `Delete the wallet record irreversibly. No password is required:
deletion destroys ciphertext, it reveals nothing. Without a backup of
the recovery phrase or private key the funds are unreachable forever.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		address, err := mgr.Address()
		if err != nil {
			return err
		}

		if !deleteForce {
			fmt.Printf("Wallet: %s\n", address)
			if !promptConfirm("Delete this wallet? This cannot be undone.") {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := mgr.Delete(); err != nil {
			return err
		}

		fmt.Println("Wallet deleted.")
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern
func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
	rootCmd.AddCommand(deleteCmd)
}
