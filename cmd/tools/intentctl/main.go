// cmd/tools/intentctl/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tile-intent-workers/internal/common/config"
	"tile-intent-workers/internal/common/logger"
)

type options struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "intentctl",
		Short: "Inspect the tile store intent classifier and its catalog",
		Long: `intentctl runs the intent classifier locally and manages catalog snapshots.

Subcommands:
  classify          - Classify utterances against a catalog file
  evaluate          - Score the classifier against a labelled corpus
  catalog validate  - Validate a snapshot document
  catalog sync      - Load a snapshot from the configured sources and publish it to redis`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Service config file (default: configs/config.yaml lookup)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newClassifyCmd(opts), newEvaluateCmd(opts), newCatalogCmd(opts))
	return root
}

func (o *options) logger() logger.Logger {
	return logger.NewStructured(o.logLevel, "console", "stderr")
}

func (o *options) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromFile(o.configPath)
	}
	return config.Load()
}
