/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package main provides the recordkit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suparena/recordkit/config"
	"github.com/suparena/recordkit/logging"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configFile string
	backend    string
	prepared   bool
}

func main() {
	logging.SetLogger(logging.New(os.Stderr))
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd creates the top-level "recordkit" command with its subcommands.
func NewRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "recordkit",
		Short: "Record identity and lookup plan caching for Go structs",
		Long: `recordkit maps Go structs onto SQLite or DynamoDB rows, gives loaded
records a key-based identity and caches one lookup plan per column set.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "recordkit.yaml", "config file")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "storage backend (memory, sqlite, dynamodb)")
	root.PersistentFlags().BoolVar(&flags.prepared, "prepared", false, "use prepared statements for lookups")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newDemoCmd(&flags))
	return root
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (config.Config, error) {
	cfg, err := config.Read(flags.configFile)
	if err != nil {
		return cfg, err
	}
	if flags.backend != "" {
		cfg.Backend = flags.backend
	}
	if cmd.Flags().Changed("prepared") {
		cfg.PreparedStatements = flags.prepared
	}
	return cfg, cfg.Validate()
}
