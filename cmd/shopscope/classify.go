// Shopscope - Behavioral Analytics for E-commerce Event Logs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopscope

package main

import (
	"context"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tomtom215/shopscope/internal/segment"
)

// classifyOutput is what classify prints.
type classifyOutput struct {
	SourceFingerprint string          `json:"source_fingerprint"`
	RulesFingerprint  string          `json:"rules_fingerprint"`
	ClassifiedAt      time.Time       `json:"classified_at"`
	FromSnapshot      bool            `json:"from_snapshot"`
	Segments          []segment.Count `json:"segments"`
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify visitors into behavioral segments",
		Long: `Classifies every visitor and persists the segmentation snapshot.
Without --force a snapshot whose fingerprint still matches the source and the
rules is reused instead of rescanning the events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := ctxOrBackground(cmd)
			bar := newScanBar(cmd.ErrOrStderr(), opts.quiet)
			e, err := openEnv(ctx, opts, func(n int64) { _ = bar.Set64(n) })
			if err != nil {
				return err
			}
			defer func() { _ = e.Close() }()

			st, err := e.classifier.Classify(ctx, force)
			_ = bar.Finish()
			if err != nil {
				return err
			}
			return printJSON(cmd, classifyOutput{
				SourceFingerprint: st.Fingerprint.Source,
				RulesFingerprint:  st.Fingerprint.Rules,
				ClassifiedAt:      st.ClassifiedAt,
				FromSnapshot:      st.FromSnapshot,
				Segments:          e.classifier.Counts(),
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "recompute even when the snapshot is current")
	return cmd
}

// newScanBar returns a spinner that counts scanned events. The total is
// unknown up front.
func newScanBar(w io.Writer, quiet bool) *progressbar.ProgressBar {
	if quiet {
		w = io.Discard
	}
	return progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Scanning events"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func ctxOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
