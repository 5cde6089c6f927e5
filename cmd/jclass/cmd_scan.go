package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jclass/scan"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		verify  bool
		workers int
		timeout time.Duration
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "scan <path>...",
		Short: "Decode every class in directories, jars, zips and jmods",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Scan.Workers
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			opts := a.fullParseOptions()
			s := scan.New(
				scan.WithWorkers(workers),
				scan.WithExtensions(a.cfg.Scan.Extensions...),
				scan.WithParseOptions(opts...),
				scan.WithDecode(a.cfg.Scan.Decode && !a.cfg.Parse.SkipAttributes),
				scan.WithVerify(verify),
			)
			for _, path := range args {
				if err := s.Scan(ctx, path); err != nil {
					return err
				}
			}
			return report(s, quiet)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "write every class back and compare it with the input")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of classes decoded in parallel")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "abort the scan after this long")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print failures and the summary")

	return cmd
}

func report(s *scan.Scanner, quiet bool) error {
	for _, r := range s.Results() {
		switch {
		case r.Err != nil:
			fmt.Printf("[FAIL] %s: %v\n", r.Path, r.Err)
		case r.Mismatch >= 0:
			fmt.Printf("[DIFF] %s: first difference at offset %d\n", r.Path, r.Mismatch)
		case !quiet:
			fmt.Printf("[OK] %s %s (%d.%d)\n", r.Path, r.ClassName, r.MajorVersion, r.MinorVersion)
		}
		if !quiet {
			for _, w := range r.Warnings {
				fmt.Printf("  warning: %s\n", w)
			}
		}
	}

	sum := s.Summary()
	fmt.Printf("\n=== SCAN COMPLETE ===\n")
	fmt.Printf("Classes: %d (%d bytes)\n", sum.Classes, sum.Bytes)
	fmt.Printf("Errors: %d\n", sum.Failed)
	fmt.Printf("Warnings: %d\n", sum.Warnings)
	if sum.Verified > 0 {
		fmt.Printf("Verified: %d, mismatched: %d\n", sum.Verified, sum.Mismatched)
	}
	if sum.Failed > 0 || sum.Mismatched > 0 {
		return fmt.Errorf("%d failures, %d mismatches", sum.Failed, sum.Mismatched)
	}
	return nil
}
