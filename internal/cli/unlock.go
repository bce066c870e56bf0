package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelwallet/kestrel/internal/secure"
	"github.com/kestrelwallet/kestrel/internal/session"
)

var unlockTimeout string

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the wallet for an interactive session",
	Long: `Unlock the wallet and hold the session open until you lock it or the
idle timeout fires. Thirty seconds before auto-lock a warning appears;
pressing Enter keeps the session alive.

Commands inside the session: Enter extends, "lock" or "q" ends it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ensureStore(); err != nil {
			return err
		}

		policy, err := resolvePolicy(unlockTimeout)
		if err != nil {
			return err
		}

		controller := session.NewController(mgr, policy, logger)

		password, err := promptPassword("Enter password: ")
		if err != nil {
			return err
		}
		err = controller.Unlock(string(password))
		secure.Zero(password)
		if err != nil {
			return err
		}
		defer controller.Lock()

		address, _ := controller.Address()
		fmt.Printf("Unlocked %s (timeout: %s)\n", address, policy)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go controller.Watch(ctx)

		return runSession(controller)
	},
}

// runSession drives the interactive loop: stdin lines count as
// activity, the watcher locks on idle, and a warning prints once per
// pending auto-lock.
func runSession(controller *session.Controller) error {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	warned := false
	for {
		select {
		case line, ok := <-lines:
			if !ok || line == "lock" || line == "q" {
				fmt.Println("Locked.")
				return nil
			}
			controller.RecordActivity()
			warned = false
			if remaining, active := controller.Remaining(); active {
				fmt.Printf("Session extended (%s remaining).\n", remaining.Round(time.Second))
			}
		case <-ticker.C:
			switch controller.State() {
			case session.StateLocked:
				fmt.Println("Auto-locked after inactivity.")
				return nil
			case session.StateWarningPending:
				if !warned {
					remaining, _ := controller.Remaining()
					fmt.Printf("Locking in %s. Press Enter to stay unlocked.\n", remaining.Round(time.Second))
					warned = true
				}
			case session.StateUnlocked:
				warned = false
			}
		}
	}
}

// resolvePolicy picks the idle policy: flag first, then the stored
// preference, then the config default.
func resolvePolicy(flag string) (session.Policy, error) {
	if flag != "" {
		return session.ParsePolicy(flag)
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		return "", err
	}
	if prefs.IdleTimeout != "" {
		return session.ParsePolicy(prefs.IdleTimeout)
	}
	return session.ParsePolicy(cfg.Security.IdleTimeout)
}

//nolint:gochecknoinits // Cobra CLI pattern
func init() {
	unlockCmd.Flags().StringVar(&unlockTimeout, "timeout", "", "idle timeout for this session: 1m, 5m, 15m, 30m, never")
	rootCmd.AddCommand(unlockCmd)
}
