package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelwallet/kestrel/internal/session"
)

var timeoutCmd = &cobra.Command{
	Use:   "timeout [policy]",
	Short: "Show or set the idle auto-lock policy",
	Long: `Show the stored idle timeout, or set it to one of: 1m, 5m, 15m, 30m,
never. The policy is stored per profile and applies to future unlock
sessions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		if len(args) == 0 {
			policy, err := resolvePolicy("")
			if err != nil {
				return err
			}
			fmt.Println(policy)
			return nil
		}

		policy, err := session.ParsePolicy(args[0])
		if err != nil {
			return err
		}

		prefs, err := store.LoadPreferences()
		if err != nil {
			return err
		}
		prefs.IdleTimeout = string(policy)
		if err := store.SavePreferences(prefs); err != nil {
			return err
		}

		fmt.Printf("Idle timeout set to %s\n", policy)
		return nil
	},
}

//nolint:gochecknoinits // Cobra CLI pattern
func init() {
	rootCmd.AddCommand(timeoutCmd)
}
