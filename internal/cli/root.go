// Package cli implements the Kestrel command-line interface.
//
// This package uses global variables to manage CLI state, which is the
// standard pattern for Cobra-based CLI applications. The globals are
// initialized in PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kestrelwallet/kestrel/internal/config"
	"github.com/kestrelwallet/kestrel/internal/kvstore"
	"github.com/kestrelwallet/kestrel/internal/manager"
	"github.com/kestrelwallet/kestrel/internal/registry"
	"github.com/kestrelwallet/kestrel/internal/walletstore"
	kerrors "github.com/kestrelwallet/kestrel/pkg/errors"
)

var (
	// Global flags
	homeDir string
	verbose bool

	// Global state initialized in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger

	// Storage state opened on demand by ensureStore
	kv    kvstore.Store
	store *walletstore.Store
	mgr   *manager.Manager
)

// rootCmd is the base command when called without any subcommands.
// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "kestrel",
	Version: Version,
	Short:   "A non-custodial Ethereum key vault",
	Long: `Kestrel manages encrypted Ethereum wallets: HD wallets derived from
BIP39 mnemonics and wallets imported from raw private keys. All secrets
are encrypted under your password; nothing ever leaves this machine.

Example:
  kestrel create
  kestrel status
  kestrel unlock`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		if suggestion := suggestionOf(err); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", suggestion)
		}
	}
	return err
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return kerrors.ExitCode(err)
}

// initGlobals loads configuration and builds the logger.
func initGlobals() error {
	home := homeDir
	if home == "" {
		home = os.Getenv("KESTREL_HOME")
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.LoadOrDefaults(config.Path(home))
	if err != nil {
		return err
	}
	cfg.Home = home

	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err = config.NewLogger(cfg.Logging)
	if err != nil {
		logger = zap.NewNop()
	}

	return nil
}

// ensureStore opens the key-value database lazily so commands that
// never touch storage (help, completion) don't create one.
func ensureStore() error {
	if store != nil {
		return nil
	}

	db, err := kvstore.OpenLevelDB(cfg.DataDir(), logger)
	if err != nil {
		return err
	}

	kv = db
	store = walletstore.New(kv)
	mgr = manager.New(store, logger)
	return nil
}

// ensureRegistry builds the multi-wallet registry on the open store.
// sessions is nil: one-shot commands never hold an unlocked session.
func ensureRegistry() (*registry.Registry, error) {
	if err := ensureStore(); err != nil {
		return nil, err
	}
	return registry.New(store, nil, logger), nil
}

// cleanup releases resources.
func cleanup() {
	if kv != nil {
		_ = kv.Close()
		kv = nil
		store = nil
		mgr = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

// suggestionOf extracts a KestrelError suggestion, if any.
func suggestionOf(err error) string {
	var kerr *kerrors.KestrelError
	if kerrors.As(err, &kerr) {
		return kerr.Suggestion
	}
	return ""
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "kestrel data directory (default: ~/.kestrel)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
