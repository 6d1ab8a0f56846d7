// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	configPath string
	demo       bool
	logLevel   string
	quiet      bool
	logOutput  io.Writer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logOutput: os.Stderr}

	cmd := &cobra.Command{
		Use:   "shopscope",
		Short: "Behavioral analytics for e-commerce event logs",
		Long: `Shopscope classifies visitors of an e-commerce event log into behavioral
segments and computes funnel, ranking, cohort and drill-down analytics.

Configuration is read the same way as the server: defaults, then the YAML
file given by --config, then environment variables. With --demo a small
built-in dataset is used instead.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.logOutput = cmd.ErrOrStderr()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flags.BoolVar(&opts.demo, "demo", false, "use the built-in demo dataset")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "hide progress output")

	cmd.AddCommand(
		newSegmentsCmd(opts),
		newClassifyCmd(opts),
		newQueryCmd(opts),
		newFingerprintCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shopscope version %s\n", version)
		},
	}
}

// printJSON writes v indented to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = cmd.OutOrStdout().Write(b)
	return err
}
