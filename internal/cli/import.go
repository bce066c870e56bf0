package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelwallet/kestrel/internal/secure"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an existing wallet",
}

var importMnemonicCmd = &cobra.Command{
	Use:   "mnemonic",
	Short: "Restore a wallet from a BIP39 recovery phrase",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		phrase, err := promptLine("Enter recovery phrase: ")
		if err != nil {
			return err
		}

		password, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer secure.Zero(password)

		address, err := mgr.ImportFromMnemonic(phrase, string(password))
		if err != nil {
			return err
		}

		fmt.Printf("Address: %s\n", address)
		return nil
	},
}

var importKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Import a wallet from a raw private key",
	Long: `Import a wallet from a 64-character hex private key, with or without
a 0x prefix. Imported wallets have no recovery phrase; back up the key
itself.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		// Hidden input: a private key on a visible line would land in
		// shell history and terminal scrollback.
		keyBytes, err := promptPassword("Enter private key: ")
		if err != nil {
			return err
		}
		defer secure.Zero(keyBytes)

		password, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer secure.Zero(password)

		address, err := mgr.ImportFromPrivateKey(string(keyBytes), string(password))
		if err != nil {
			return err
		}

		fmt.Printf("Address: %s\n", address)
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern
func init() {
	importCmd.AddCommand(importMnemonicCmd)
	importCmd.AddCommand(importKeyCmd)
	rootCmd.AddCommand(importCmd)
}
