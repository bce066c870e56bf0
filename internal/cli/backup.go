package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelwallet/kestrel/internal/backup"
	"github.com/kestrelwallet/kestrel/internal/secure"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore an encrypted backup",
	Long: `Backups hold the full wallet state (records, registry, preferences) in
one age-encrypted file. Records inside are already encrypted under
their wallet passwords; the backup passphrase protects the file as a
whole and may differ from any wallet password.`,
}

var backupExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write an encrypted backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		passphrase, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer secure.Zero(passphrase)

		if err := backup.Export(store, string(passphrase), args[0]); err != nil {
			return err
		}

		fmt.Printf("Backup written to %s\n", args[0])
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore from an encrypted backup file",
	Long: `Restore wallet state from a backup, overwriting the current profile.
Wallet passwords are whatever they were when the backup was taken.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		passphrase, err := promptPassword("Enter backup passphrase: ")
		if err != nil {
			return err
		}
		defer secure.Zero(passphrase)

		if err := backup.Import(store, string(passphrase), args[0]); err != nil {
			return err
		}

		fmt.Println("Backup restored.")
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern
func init() {
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
	rootCmd.AddCommand(backupCmd)
}
