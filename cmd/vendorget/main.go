package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

var (
	// Global flags
	verbose      bool
	targetDir    string
	maxParallel  int
	timeout      time.Duration
	retries      int
	manifestPath string
	writeLock    bool

	// Logger
	logger = zap.NewNop()
)

// rootCmd represents the base command. Running it with no subcommand
// performs a fetch, so provisioning a site is a single `vendorget`.
var rootCmd = &cobra.Command{
	Use:   "vendorget",
	Short: "vendorget - provision local vendor copies of web assets",
	Long: `vendorget populates a vendor directory with local copies of the remotely
hosted assets a static site needs (React, ReactDOM, the Babel standalone
transpiler, a Tailwind browser build), so the site can be developed offline.

Run without arguments to fetch the built-in asset list into ./vendor.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			return nil
		}

		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runFetch,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&targetDir, "dir", "vendor", "vendor directory")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "YAML manifest overriding the built-in asset list")

	for _, cmd := range []*cobra.Command{rootCmd, fetchCmd} {
		cmd.Flags().IntVarP(&maxParallel, "parallel", "j", 1, "maximum parallel fetches")
		cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")
		cmd.Flags().IntVar(&retries, "retries", 0, "additional attempts per asset")
		cmd.Flags().BoolVar(&writeLock, "lock", false, "write vendor.lock.yml after fetching")
	}

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(bundleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
