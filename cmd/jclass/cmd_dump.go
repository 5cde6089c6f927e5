package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jclass/format"
)

func newDumpCmd(a *app) *cobra.Command {
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <file.class>...",
		Short: "Dump the structure of class files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := format.NewEncoder(dumpFormat, os.Stdout)
			if err != nil {
				return err
			}
			for _, filename := range args {
				cf, err := a.parseFile(filename)
				if err != nil {
					return err
				}
				if err := enc.Encode(cf); err != nil {
					return fmt.Errorf("encode %s: %w", dumpFormat, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "line", "output format ("+strings.Join(format.Formats, ", ")+")")

	return cmd
}
