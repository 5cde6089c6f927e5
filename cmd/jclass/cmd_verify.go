package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jclass/scan"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file.class>...",
		Short: "Check that class files are written back byte for byte",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, filename := range args {
				data, err := os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("failed to read class file: %w", err)
				}
				_, offset, err := scan.Verify(data, a.fullParseOptions()...)
				switch {
				case err != nil:
					failed++
					fmt.Printf("[FAIL] %s: %v\n", filename, err)
				case offset >= 0:
					failed++
					fmt.Printf("[DIFF] %s: first difference at offset %d\n", filename, offset)
				default:
					fmt.Printf("[OK] %s\n", filename)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d class files did not round trip", failed, len(args))
			}
			return nil
		},
	}
}
