// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package main

import (
	"github.com/spf13/cobra"
)

func newSegmentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "List every segment with its visitor count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := ctxOrBackground(cmd)
			e, err := openEnv(ctx, opts, nil)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			if _, err := e.classifier.Classify(ctx, false); err != nil {
				return err
			}
			return printJSON(cmd, e.service.Segments(ctx))
		},
	}
}

func newFingerprintCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the source and rules fingerprints",
		Long: `Prints the fingerprints a segmentation snapshot is validated against. A
snapshot is reused only while both values are unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := ctxOrBackground(cmd)
			e, err := openEnv(ctx, opts, nil)
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			fp, err := e.classifier.Fingerprint(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{
				"source": fp.Source,
				"rules":  fp.Rules,
			})
		},
	}
}
