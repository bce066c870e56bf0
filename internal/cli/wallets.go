package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kestrelwallet/kestrel/internal/registry"
	"github.com/kestrelwallet/kestrel/internal/secure"
)

var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "Manage multiple wallets in one profile",
}

var walletsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		reg, err := ensureRegistry()
		if err != nil {
			return err
		}

		entries, err := reg.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No wallets. Run 'kestrel wallets add'.")
			return nil
		}

		active, err := reg.Active()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tLABEL\tADDRESS\tTYPE")
		for _, entry := range entries {
			marker := ""
			if entry.ID == active.ID {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, entry.ID, entry.Label, entry.Address, entry.Type)
		}
		return w.Flush()
	},
}

var walletsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new HD wallet to the registry",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		reg, err := ensureRegistry()
		if err != nil {
			return err
		}

		password, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer secure.Zero(password)

		record, mnemonic, err := mgr.NewHDRecord(string(password))
		if err != nil {
			return err
		}
		if err := reg.AddOrUpdate(record); err != nil {
			return err
		}

		fmt.Printf("Added wallet %s\n", record.ID)
		fmt.Printf("Address: %s\n\n", record.Address)
		fmt.Println("Recovery phrase (shown once, write it down now):")
		fmt.Printf("\n  %s\n\n", mnemonic)
		fmt.Fprintln(os.Stderr, "WARNING: anyone with this phrase controls the wallet.")
		return nil
	},
}

var walletsSwitchCmd = &cobra.Command{
	Use:   "switch <id>",
	Short: "Make another wallet active",
	Long: `Make another wallet the active one. Any live session ends: the newly
active wallet starts locked and needs its own password.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		reg, err := ensureRegistry()
		if err != nil {
			return err
		}

		if err := reg.SwitchActive(args[0]); err != nil {
			return err
		}

		fmt.Printf("Active wallet: %s\n", args[0])
		return nil
	},
}

var walletsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a wallet from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		reg, err := ensureRegistry()
		if err != nil {
			return err
		}

		if !promptConfirm("Remove wallet " + args[0] + "? This cannot be undone.") {
			fmt.Println("Aborted.")
			return nil
		}

		if err := reg.Remove(args[0]); err != nil {
			return err
		}

		fmt.Println("Wallet removed.")
		return nil
	},
}

var walletsLabelCmd = &cobra.Command{
	Use:   "label <id> <label>",
	Short: "Set a wallet's display label",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		reg, err := ensureRegistry()
		if err != nil {
			return err
		}

		return reg.UpdateMetadata(args[0], registry.Metadata{Label: &args[1]})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern
func init() {
	walletsCmd.AddCommand(walletsListCmd)
	walletsCmd.AddCommand(walletsAddCmd)
	walletsCmd.AddCommand(walletsSwitchCmd)
	walletsCmd.AddCommand(walletsRemoveCmd)
	walletsCmd.AddCommand(walletsLabelCmd)
	rootCmd.AddCommand(walletsCmd)
}
