package cli

import (
	"fmt"
	"os"

	"github.com/LeJamon/goswap/internal/config"
	"github.com/LeJamon/goswap/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configFile string
	debug      bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swapd",
	Short: "goswap - constant-product AMM ledger",
	Long: `swapd applies AMM invocations (pool creation, liquidity, swaps and
multihop swaps) against a local ledger and answers read-side queries over it.`,
	Version:           "0.1.0-dev",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Flags named after config keys override file and environment
	rootCmd.PersistentFlags().String("state.backend", "", "state backend: pebble, bbolt, leveldb or memory")
	rootCmd.PersistentFlags().String("state.path", "", "state database path")
	rootCmd.PersistentFlags().String("receipts.backend", "", "receipt store: none, sqlite or postgres")
	rootCmd.PersistentFlags().String("log.level", "", "log level")
}

// initConfig loads the configuration file and SWAPD_ environment overrides
func initConfig(cmd *cobra.Command, args []string) error {
	c, err := config.LoadConfigWithFlags(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if debug {
		c.Log.Level = "debug"
	}
	l, err := logging.New(c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}
