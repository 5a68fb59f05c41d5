package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Personal portfolio site with scroll-triggered reveals",
	Long: `portfolio serves a single-page developer portfolio. Sections and cards
start hidden and animate into view the first time they scroll on screen; the
page also carries a light/dark theme toggle and an optional admin dashboard.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds a development logger in gin's debug mode and a JSON
// production logger otherwise.
func newLogger(ginMode string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if ginMode == "debug" {
		cfg = zap.NewDevelopmentConfig()
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}
